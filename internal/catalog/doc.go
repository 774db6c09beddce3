// Package catalog loads the named mirror presets for every target.
//
// A catalog document is JSON (the mirrors.json format) or YAML mapping a
// target name to an ordered list of {name, url} records. Documents are
// validated against an embedded JSON Schema and an optional semver "version"
// field. Loading never fails: a missing or malformed document degrades to
// the built-in default catalog, and the cause is kept on the result.
package catalog
