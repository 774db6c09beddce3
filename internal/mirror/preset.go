package mirror

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Names that denote the no-mirror preset regardless of URL.
const (
	OriginalName   = "原始"
	OriginalNameEn = "original"
)

// Preset is one named mirror option of a target.
type Preset struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// IsOriginal reports whether p is the pass-through preset. The HuggingFace
// default catalog gives the original preset the upstream URL, so the name
// alone is enough.
func (p Preset) IsOriginal() bool {
	return strings.TrimSpace(p.URL) == "" || IsOriginalName(p.Name)
}

// IsOriginalName reports whether name is one of the sentinel names.
func IsOriginalName(name string) bool {
	n := NormalizeName(name)
	return n == OriginalName || strings.EqualFold(n, OriginalNameEn)
}

// NormalizeURL trims whitespace and trailing slashes. It is the only
// transformation applied before two URLs are compared.
func NormalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// SameURL reports whether a and b are equal after normalization.
// Two empty URLs are never considered the same mirror.
func SameURL(a, b string) bool {
	na, nb := NormalizeURL(a), NormalizeURL(b)
	return na != "" && na == nb
}

// NormalizeName returns the NFC form of name with surrounding spaces removed.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
