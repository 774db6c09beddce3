package envstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/mirrorkit/mirrorkit/internal/config"
	"github.com/mirrorkit/mirrorkit/internal/platform"
)

// FileName is the user store document kept in the config directory.
const FileName = "environment.yaml"

// DefaultFilePath returns ~/.mirrorkit/environment.yaml.
func DefaultFilePath() string {
	return filepath.Join(config.Dir(), FileName)
}

// File persists user-scope variables in a YAML mapping.
type File struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewFile returns a File store at path on fsys.
func NewFile(fsys afero.Fs, path string) *File {
	return &File{fs: fsys, path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Get(name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := vars[name]
	return v, ok, nil
}

func (f *File) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.read()
	if err != nil {
		return err
	}
	vars[name] = value
	return f.write(vars)
}

func (f *File) Unset(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.read()
	if err != nil {
		return false, err
	}
	if _, ok := vars[name]; !ok {
		return false, nil
	}
	delete(vars, name)
	if len(vars) == 0 {
		if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, platform.PermissionError("removing "+f.path, err)
		}
		return true, nil
	}
	return true, f.write(vars)
}

// Notify is a no-op: shells pick the file up through `mirrorkit env`.
func (f *File) Notify() error { return nil }

// All returns every stored variable sorted by name.
func (f *File) All() ([][2]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vars, err := f.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([][2]string, len(names))
	for i, k := range names {
		out[i] = [2]string{k, vars[k]}
	}
	return out, nil
}

func (f *File) read() (map[string]string, error) {
	vars := make(map[string]string)
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return vars, nil
	}
	if err != nil {
		return nil, platform.PermissionError("reading "+f.path, fmt.Errorf("reading %s: %w", f.path, err))
	}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	if vars == nil {
		vars = make(map[string]string)
	}
	return vars, nil
}

func (f *File) write(vars map[string]string) error {
	data, err := yaml.Marshal(vars)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", f.path, err)
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return platform.PermissionError("creating "+filepath.Dir(f.path), err)
	}
	if err := afero.WriteFile(f.fs, f.path, data, 0o600); err != nil {
		return platform.PermissionError("writing "+f.path, fmt.Errorf("writing %s: %w", f.path, err))
	}
	return nil
}
