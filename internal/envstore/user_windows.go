//go:build windows

package envstore

import (
	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/config"
)

// User returns the per-user store for mode: the registry for "auto" and
// the YAML file for "file".
func User(fsys afero.Fs, mode string) Store {
	if mode == config.UserStoreFile {
		return NewFile(fsys, DefaultFilePath())
	}
	return NewUserRegistry()
}

// Machine returns the read-only machine scope.
func Machine(afero.Fs) Reader {
	return NewMachineRegistry()
}
