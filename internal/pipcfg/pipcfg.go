package pipcfg

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/mirrorkit/mirrorkit/internal/platform"
)

// Keys holding the index URL, in read order.
const (
	KeyIndexURL = "index-url"
	// KeyMirror is written by older releases of the tool.
	KeyMirror = "mirror"
)

var sections = []string{"global", "install"}

func load(fsys afero.Fs, path string) (*ini.File, bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, platform.PermissionError("reading "+path, fmt.Errorf("reading %s: %w", path, err))
	}
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, data)
	if err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, true, nil
}

// Read returns the index URL configured in path. A missing file is not an
// error.
func Read(fsys afero.Fs, path string) (string, bool, error) {
	f, ok, err := load(fsys, path)
	if err != nil || !ok {
		return "", false, err
	}
	for _, key := range []string{KeyIndexURL, KeyMirror} {
		for _, name := range sections {
			sec, err := f.GetSection(name)
			if err != nil {
				continue
			}
			if sec.HasKey(key) {
				if v := strings.TrimSpace(sec.Key(key).String()); v != "" {
					return v, true, nil
				}
			}
		}
	}
	return "", false, nil
}

// Clear removes the index URL keys from path. The file is deleted when
// nothing else is left in it. changed reports whether the file was modified.
func Clear(fsys afero.Fs, path string) (bool, error) {
	f, ok, err := load(fsys, path)
	if err != nil || !ok {
		return false, err
	}

	changed := false
	for _, name := range sections {
		sec, err := f.GetSection(name)
		if err != nil {
			continue
		}
		for _, key := range []string{KeyIndexURL, KeyMirror} {
			if sec.HasKey(key) {
				sec.DeleteKey(key)
				changed = true
			}
		}
	}
	if !changed {
		return false, nil
	}

	if empty(f) {
		if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, platform.PermissionError("removing "+path, fmt.Errorf("removing %s: %w", path, err))
		}
		return true, nil
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return false, fmt.Errorf("rendering %s: %w", path, err)
	}
	info, err := fsys.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), mode); err != nil {
		return false, platform.PermissionError("writing "+path, fmt.Errorf("writing %s: %w", path, err))
	}
	return true, nil
}

func empty(f *ini.File) bool {
	for _, sec := range f.Sections() {
		if len(sec.Keys()) > 0 {
			return false
		}
	}
	return true
}
