// Package mirror defines the shared vocabulary of mirrorkit: the mirror
// targets (git, pip, huggingface), catalog presets, URL and name
// normalization, and the sentinel errors every layer wraps.
package mirror
