//go:build windows

package platform

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token is elevated, which is
// required to change machine-scope environment variables.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// ElevationHint tells the user how to obtain the rights IsElevated checks.
func ElevationHint() string {
	return "restart the terminal as Administrator (right-click -> 'Run as Administrator')"
}
