package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/mirrorkit/mirrorkit/internal/config"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// FileName is the catalog file looked up next to the executable and in the
// config directory.
const FileName = "mirrors.json"

// utf8BOM is stripped from documents saved by Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedVersions is the range of document versions this build understands.
const SupportedVersions = "^1.0.0"

// ResolvePath returns the catalog path, checking (in order):
// 1. the --catalog flag value
// 2. <PREFIX>_CATALOG env var
// 3. config key "catalog"
// 4. mirrors.json next to the executable, if it exists
// 5. ~/.mirrorkit/mirrors.json
func ResolvePath(fsys afero.Fs, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(branding.EnvVar("CATALOG")); v != "" {
		return v
	}
	if v := config.Get("catalog"); v != "" {
		return v
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), FileName)
		if ok, _ := afero.Exists(fsys, candidate); ok {
			return candidate
		}
	}
	return filepath.Join(config.Dir(), FileName)
}

// Load reads the catalog at path. It never fails: when the file is missing or
// unusable the built-in catalog is returned with Fallback set and Cause
// explaining why.
func Load(fsys afero.Fs, path string) *Catalog {
	if path == "" {
		return fallback(fmt.Errorf("%w: no catalog path configured", mirror.ErrConfigNotFound))
	}

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, os.ErrNotExist) {
		return fallback(fmt.Errorf("%w: %s", mirror.ErrConfigNotFound, path))
	}
	if err != nil {
		return fallback(fmt.Errorf("reading catalog %s: %w", path, err))
	}

	c, err := Parse(data)
	if err != nil {
		return fallback(fmt.Errorf("loading catalog %s: %w", path, err))
	}
	c.Source = path
	return c
}

// LoadFile validates and parses a catalog file, failing loudly. Used by
// `catalog validate`.
func LoadFile(fsys afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.Source = path
	return c, nil
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) (*Catalog, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &SchemaError{Issues: result.Issues}
	}

	var doc document
	if isJSON(data) {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	hf := doc.HuggingFace
	if len(hf) == 0 {
		hf = doc.HF
	}

	c := &Catalog{
		Version: doc.Version,
		presets: map[mirror.Target][]mirror.Preset{
			mirror.Git:         doc.Git,
			mirror.Pip:         doc.Pip,
			mirror.HuggingFace: hf,
		},
	}
	for _, t := range mirror.AllTargets() {
		if err := checkUniqueNames(t, c.presets[t]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SchemaError reports the schema violations of a rejected document.
type SchemaError struct {
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		return "catalog does not match schema"
	}
	first := e.Issues[0]
	msg := first.Message
	if first.Path != "" {
		msg = first.Path + ": " + msg
	}
	if len(e.Issues) == 1 {
		return "catalog does not match schema: " + msg
	}
	return fmt.Sprintf("catalog does not match schema: %s (and %d more)", msg, len(e.Issues)-1)
}

func fallback(cause error) *Catalog {
	c := Default()
	c.Fallback = true
	c.Cause = cause
	return c
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("parsing catalog version %q: %w", v, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("catalog version %s is not supported (want %s)", v, SupportedVersions)
	}
	return nil
}

func checkUniqueNames(t mirror.Target, presets []mirror.Preset) error {
	seen := make(map[string]bool, len(presets))
	for _, p := range presets {
		name := mirror.NormalizeName(p.Name)
		if seen[name] {
			return fmt.Errorf("duplicate preset name %q in %s", p.Name, t)
		}
		seen[name] = true
	}
	return nil
}

// isJSON reports whether data looks like a JSON document. JSON goes through
// encoding/json because YAML rejects the tab indentation common in
// hand-edited mirrors.json files.
func isJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
