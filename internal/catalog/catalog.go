package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// BuiltinSource is the Source of a catalog that came from Default.
const BuiltinSource = "built-in"

// CurrentVersion is written into documents produced by Document.
const CurrentVersion = "1.0.0"

// Catalog holds the ordered presets of every target. It is immutable after load.
type Catalog struct {
	// Source is the file the presets came from, or BuiltinSource.
	Source string
	// Version is the document's declared version, if any.
	Version string
	// Fallback is true when the requested document could not be used.
	Fallback bool
	// Cause explains a fallback; nil otherwise.
	Cause error

	presets map[mirror.Target][]mirror.Preset
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Source:  BuiltinSource,
		Version: CurrentVersion,
		presets: map[mirror.Target][]mirror.Preset{
			mirror.Git: {
				{Name: mirror.OriginalName, URL: ""},
				{Name: "阿里云", URL: "https://mirrors.aliyun.com/git/"},
				{Name: "腾讯云", URL: "https://mirrors.cloud.tencent.com/git/"},
				{Name: "华为云", URL: "https://repo.huaweicloud.com/git/"},
			},
			mirror.Pip: {
				{Name: mirror.OriginalName, URL: ""},
				{Name: "阿里云", URL: "https://mirrors.aliyun.com/pypi/simple/"},
				{Name: "清华", URL: "https://pypi.tuna.tsinghua.edu.cn/simple"},
				{Name: "腾讯云", URL: "https://mirrors.cloud.tencent.com/pypi/simple"},
				{Name: "华为云", URL: "https://repo.huaweicloud.com/repository/pypi/simple"},
			},
			mirror.HuggingFace: {
				{Name: mirror.OriginalName, URL: "https://huggingface.co"},
				{Name: "镜像1", URL: "https://hf-mirror.com"},
			},
		},
	}
}

// New builds a catalog from explicit preset lists. Used by callers that
// assemble presets in code, tests included.
func New(presets map[mirror.Target][]mirror.Preset) *Catalog {
	c := &Catalog{Source: BuiltinSource, presets: make(map[mirror.Target][]mirror.Preset, len(presets))}
	for t, list := range presets {
		c.presets[t] = append([]mirror.Preset(nil), list...)
	}
	return c
}

// Presets returns a copy of the ordered presets of target.
func (c *Catalog) Presets(target mirror.Target) []mirror.Preset {
	list := c.presets[target]
	out := make([]mirror.Preset, len(list))
	copy(out, list)
	return out
}

// Lookup resolves a preset by name. The sentinel names always resolve, even
// when the document does not list them, so every target can be reset.
func (c *Catalog) Lookup(target mirror.Target, name string) (mirror.Preset, bool) {
	want := mirror.NormalizeName(name)
	for _, p := range c.presets[target] {
		if mirror.NormalizeName(p.Name) == want {
			return p, true
		}
	}
	if mirror.IsOriginalName(name) {
		return mirror.Preset{Name: want}, true
	}
	return mirror.Preset{}, false
}

// Resolve is Lookup with an error naming the known presets.
func (c *Catalog) Resolve(target mirror.Target, name string) (mirror.Preset, error) {
	p, ok := c.Lookup(target, name)
	if !ok {
		return mirror.Preset{}, fmt.Errorf("%w %q for %s (known: %v)", mirror.ErrUnknownPreset, name, target, c.Names(target))
	}
	return p, nil
}

// Match returns the preset whose URL equals url after normalization.
// Presets without a URL never match.
func (c *Catalog) Match(target mirror.Target, url string) (mirror.Preset, bool) {
	for _, p := range c.presets[target] {
		if mirror.SameURL(p.URL, url) {
			return p, true
		}
	}
	return mirror.Preset{}, false
}

// Names returns the preset names of target in display order.
func (c *Catalog) Names(target mirror.Target) []string {
	list := c.presets[target]
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	return names
}

// document is the on-disk shape shared by JSON and YAML catalogs.
type document struct {
	Version     string          `json:"version,omitempty" yaml:"version,omitempty"`
	Git         []mirror.Preset `json:"git" yaml:"git"`
	Pip         []mirror.Preset `json:"pip" yaml:"pip"`
	HuggingFace []mirror.Preset `json:"huggingface" yaml:"huggingface"`
	HF          []mirror.Preset `json:"hf,omitempty" yaml:"hf,omitempty"`
}

// Document renders the catalog as an indented JSON document that Parse accepts.
func (c *Catalog) Document() ([]byte, error) {
	doc := document{
		Version:     CurrentVersion,
		Git:         c.Presets(mirror.Git),
		Pip:         c.Presets(mirror.Pip),
		HuggingFace: c.Presets(mirror.HuggingFace),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	return append(data, '\n'), nil
}
