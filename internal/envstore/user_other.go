//go:build !windows

package envstore

import "github.com/spf13/afero"

// SystemEnvFile is the machine-wide variable file read by PAM.
const SystemEnvFile = "/etc/environment"

// User returns the per-user store. Outside Windows there is no persistent
// variable store, so every mode uses the YAML file.
func User(fsys afero.Fs, _ string) Store {
	return NewFile(fsys, DefaultFilePath())
}

// Machine returns the read-only machine scope.
func Machine(fsys afero.Fs) Reader {
	return NewEnvFile(fsys, SystemEnvFile)
}
