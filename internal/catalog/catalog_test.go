package catalog

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

func TestDefault(t *testing.T) {
	c := Default()
	for _, target := range mirror.AllTargets() {
		presets := c.Presets(target)
		if len(presets) < 2 {
			t.Fatalf("%s: expected at least 2 presets, got %d", target, len(presets))
		}
		if presets[0].Name != mirror.OriginalName {
			t.Errorf("%s: first preset = %q, want %q", target, presets[0].Name, mirror.OriginalName)
		}
	}
	if c.Fallback {
		t.Error("Default() should not be marked as fallback")
	}
}

func TestPresets_ReturnsCopy(t *testing.T) {
	c := Default()
	got := c.Presets(mirror.Pip)
	got[1].URL = "https://changed.example"
	if c.Presets(mirror.Pip)[1].URL == "https://changed.example" {
		t.Error("mutating the returned slice changed the catalog")
	}
}

func TestLookup(t *testing.T) {
	c := Default()
	tests := []struct {
		name    string
		target  mirror.Target
		query   string
		wantURL string
		wantOK  bool
	}{
		{"exact", mirror.Pip, "清华", "https://pypi.tuna.tsinghua.edu.cn/simple", true},
		{"padded", mirror.Git, "  阿里云 ", "https://mirrors.aliyun.com/git/", true},
		{"sentinel", mirror.Git, "原始", "", true},
		{"english sentinel", mirror.Pip, "Original", "", true},
		{"unknown", mirror.Pip, "nope", "", false},
		{"wrong target", mirror.HuggingFace, "清华", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := c.Lookup(tt.target, tt.query)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%s, %q) ok = %v, want %v", tt.target, tt.query, ok, tt.wantOK)
			}
			if p.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", p.URL, tt.wantURL)
			}
		})
	}
}

func TestLookup_SentinelMissingFromDocument(t *testing.T) {
	c := New(map[mirror.Target][]mirror.Preset{
		mirror.Git: {{Name: "mirrorA", URL: "https://a.example/"}},
	})
	p, ok := c.Lookup(mirror.Git, "original")
	if !ok {
		t.Fatal("sentinel should always resolve")
	}
	if !p.IsOriginal() {
		t.Errorf("resolved preset %+v is not the sentinel", p)
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Default().Resolve(mirror.Pip, "nope")
	if !errors.Is(err, mirror.ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
	if !strings.Contains(err.Error(), "清华") {
		t.Errorf("error should list known presets: %v", err)
	}
}

func TestMatch(t *testing.T) {
	c := Default()
	tests := []struct {
		url      string
		wantName string
		wantOK   bool
	}{
		{"https://pypi.tuna.tsinghua.edu.cn/simple/", "清华", true},
		{" https://mirrors.aliyun.com/pypi/simple ", "阿里云", true},
		{"https://pypi.example/simple", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p, ok := c.Match(mirror.Pip, tt.url)
			if ok != tt.wantOK || p.Name != tt.wantName {
				t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.url, p.Name, ok, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestParse_JSON(t *testing.T) {
	c, err := LoadFile(afero.NewOsFs(), testPath("mirrors.json"))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got := c.Names(mirror.Pip); len(got) != 2 || got[1] != "清华" {
		t.Errorf("pip names = %v", got)
	}
	if c.Source != testPath("mirrors.json") {
		t.Errorf("Source = %q", c.Source)
	}
}

func TestParse_YAMLWithAlias(t *testing.T) {
	c, err := LoadFile(afero.NewOsFs(), testPath("mirrors.yaml"))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if c.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", c.Version)
	}
	p, ok := c.Lookup(mirror.HuggingFace, "corp")
	if !ok || p.URL != "https://hf.corp.example/" {
		t.Errorf("hf alias not honoured: %+v, %v", p, ok)
	}
	if len(c.Presets(mirror.Pip)) != 0 {
		t.Errorf("pip should be empty, got %v", c.Presets(mirror.Pip))
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"duplicate-names.yaml", "duplicate preset name"},
		{"future-version.yaml", "not supported"},
		{"invalid-url.json", "does not match schema"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadFile(afero.NewOsFs(), testPath(tt.file))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParse_SchemaErrorType(t *testing.T) {
	_, err := LoadFile(afero.NewOsFs(), testPath("invalid-unknown-target.json"))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if len(schemaErr.Issues) == 0 {
		t.Error("SchemaError has no issues")
	}
}

func TestLoad_Missing(t *testing.T) {
	c := Load(afero.NewMemMapFs(), "/nowhere/mirrors.json")
	if !c.Fallback {
		t.Fatal("expected fallback catalog")
	}
	if !errors.Is(c.Cause, mirror.ErrConfigNotFound) {
		t.Errorf("Cause = %v, want ErrConfigNotFound", c.Cause)
	}
	if c.Source != BuiltinSource {
		t.Errorf("Source = %q, want %q", c.Source, BuiltinSource)
	}
}

func TestLoad_Malformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join("/cfg", FileName)
	if err := afero.WriteFile(fs, path, []byte("{ not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Load(fs, path)
	if !c.Fallback || c.Cause == nil {
		t.Fatalf("expected fallback with cause, got fallback=%v cause=%v", c.Fallback, c.Cause)
	}
	if errors.Is(c.Cause, mirror.ErrConfigNotFound) {
		t.Error("malformed file should not be reported as missing")
	}
	if _, ok := c.Lookup(mirror.Pip, "清华"); !ok {
		t.Error("fallback catalog should carry the defaults")
	}
}

func TestLoad_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/mirrors.json", nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if c := Load(fs, "/mirrors.json"); !c.Fallback {
		t.Error("empty file should fall back")
	}
}

func TestLoad_Valid(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{"git": [{"name": "original", "url": ""}, {"name": "mirrorA", "url": "https://a.example/"}]}`
	if err := afero.WriteFile(fs, "/mirrors.json", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Load(fs, "/mirrors.json")
	if c.Fallback {
		t.Fatalf("unexpected fallback: %v", c.Cause)
	}
	if p, ok := c.Match(mirror.Git, "https://a.example"); !ok || p.Name != "mirrorA" {
		t.Errorf("Match = %+v, %v", p, ok)
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	data, err := Default().Document()
	if err != nil {
		t.Fatalf("Document error: %v", err)
	}
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Document()) error: %v", err)
	}
	for _, target := range mirror.AllTargets() {
		want := Default().Names(target)
		got := c.Names(target)
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("%s names = %v, want %v", target, got, want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath(afero.NewMemMapFs(), "/flag/mirrors.json"); got != "/flag/mirrors.json" {
		t.Errorf("flag value not preferred: %q", got)
	}

	t.Setenv("MIRRORKIT_CATALOG", "/env/mirrors.json")
	if got := ResolvePath(afero.NewMemMapFs(), ""); got != "/env/mirrors.json" {
		t.Errorf("env value not used: %q", got)
	}
}
