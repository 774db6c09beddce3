package envstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/subosito/gotenv"
)

// EnvFile reads KEY=VALUE documents such as /etc/environment.
type EnvFile struct {
	fs   afero.Fs
	path string
}

// NewEnvFile returns a read-only scope backed by path.
func NewEnvFile(fsys afero.Fs, path string) *EnvFile {
	return &EnvFile{fs: fsys, path: path}
}

func (e *EnvFile) Get(name string) (string, bool, error) {
	f, err := e.fs.Open(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("opening %s: %w", e.path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return "", false, fmt.Errorf("parsing %s: %w", e.path, err)
	}
	v, ok := env[name]
	return v, ok, nil
}
