//go:build windows

package platform

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// SysProcAttr keeps child processes such as git from flashing a console
// window when the CLI is launched from a shortcut.
func SysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
