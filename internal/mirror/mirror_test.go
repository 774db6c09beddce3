package mirror

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"git", Git, false},
		{"PIP", Pip, false},
		{" huggingface ", HuggingFace, false},
		{"hf", HuggingFace, false},
		{"npm", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTarget) {
					t.Fatalf("ParseTarget(%q) error = %v, want ErrUnknownTarget", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPresetIsOriginal(t *testing.T) {
	tests := []struct {
		name   string
		preset Preset
		want   bool
	}{
		{"chinese sentinel name", Preset{Name: "原始", URL: ""}, true},
		{"english sentinel name", Preset{Name: "Original", URL: "https://x"}, true},
		{"sentinel name with upstream url", Preset{Name: "原始", URL: "https://huggingface.co"}, true},
		{"empty url", Preset{Name: "custom", URL: "  "}, true},
		{"regular mirror", Preset{Name: "清华", URL: "https://pypi.tuna.tsinghua.edu.cn/simple"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.preset.IsOriginal(); got != tt.want {
				t.Errorf("IsOriginal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://a.example/", "https://a.example"},
		{"https://a.example//", "https://a.example"},
		{" https://a.example/simple ", "https://a.example/simple"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSameURL(t *testing.T) {
	if !SameURL("https://hf-mirror.com/", "https://hf-mirror.com") {
		t.Error("expected trailing slash to be ignored")
	}
	if SameURL("https://mirrors.aliyun.com/git", "https://mirrors.aliyun.com/git/extra") {
		t.Error("prefix must not match")
	}
	if SameURL("", "/") {
		t.Error("empty URLs must never match")
	}
}

func TestNormalizeNameNFC(t *testing.T) {
	// "é" as e + combining acute accent vs. precomposed.
	decomposed := "cafe\u0301"
	if NormalizeName(decomposed) != "caf\u00e9" {
		t.Errorf("NormalizeName did not compose %q", decomposed)
	}
	if !IsOriginalName(" 原始 ") {
		t.Error("expected padded sentinel name to be recognized")
	}
}
