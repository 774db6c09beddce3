//go:build !windows

package platform

import "os"

// IsElevated returns true if we're running as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// ElevationHint tells the user how to obtain the rights IsElevated checks.
func ElevationHint() string {
	return "re-run with sudo to change system-wide configuration"
}
