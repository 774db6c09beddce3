//go:build !windows

package platform

import "syscall"

// SysProcAttr returns the attributes for child processes. Nothing is needed
// outside Windows.
func SysProcAttr() *syscall.SysProcAttr {
	return nil
}
