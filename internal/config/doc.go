// Package config manages user-level settings stored at ~/.mirrorkit/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the catalog path, the probe and git timeouts, and the URLs that Git rewrite
// rules replace.
package config
