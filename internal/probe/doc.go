// Package probe reports which preset is active for a target by reading its
// locations in precedence order. Nothing is cached: every call reads the
// live configuration.
package probe
