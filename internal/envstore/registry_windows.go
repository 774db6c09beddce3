//go:build windows

package envstore

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/mirrorkit/mirrorkit/internal/platform"
)

const (
	userEnvKey    = `Environment`
	machineEnvKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

	hwndBroadcast    = 0xFFFF
	wmSettingChange  = 0x001A
	smtoAbortIfHung  = 0x0002
	broadcastTimeout = 5000 // milliseconds
)

var procSendMessageTimeout = windows.NewLazySystemDLL("user32.dll").NewProc("SendMessageTimeoutW")

// Registry is an environment scope stored under a registry key.
type Registry struct {
	root  registry.Key
	path  string
	label string
}

// NewUserRegistry returns the HKCU\Environment store.
func NewUserRegistry() *Registry {
	return &Registry{root: registry.CURRENT_USER, path: userEnvKey, label: `HKCU\Environment`}
}

// NewMachineRegistry returns the machine environment key. It is only read.
func NewMachineRegistry() *Registry {
	return &Registry{root: registry.LOCAL_MACHINE, path: machineEnvKey, label: `HKLM\` + machineEnvKey}
}

func (r *Registry) Get(name string) (string, bool, error) {
	k, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, platform.PermissionError("opening "+r.label, fmt.Errorf("opening %s: %w", r.label, err))
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s\\%s: %w", r.label, name, err)
	}
	return v, true, nil
}

func (r *Registry) Set(name, value string) error {
	k, _, err := registry.CreateKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		return platform.PermissionError("opening "+r.label, fmt.Errorf("opening %s: %w", r.label, err))
	}
	defer k.Close()

	if err := k.SetStringValue(name, value); err != nil {
		return platform.PermissionError("writing "+name, fmt.Errorf("writing %s\\%s: %w", r.label, name, err))
	}
	return nil
}

func (r *Registry) Unset(name string) (bool, error) {
	k, err := registry.OpenKey(r.root, r.path, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, platform.PermissionError("opening "+r.label, fmt.Errorf("opening %s: %w", r.label, err))
	}
	defer k.Close()

	err = k.DeleteValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, platform.PermissionError("deleting "+name, fmt.Errorf("deleting %s\\%s: %w", r.label, name, err))
	}
	return true, nil
}

// Notify broadcasts WM_SETTINGCHANGE with "Environment" so Explorer and
// newly started shells reload the variables.
func (r *Registry) Notify() error {
	param, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return err
	}
	var result uintptr
	ret, _, callErr := procSendMessageTimeout.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		broadcastTimeout,
		uintptr(unsafe.Pointer(&result)),
	)
	if ret == 0 {
		return fmt.Errorf("broadcasting environment change: %w", callErr)
	}
	return nil
}
