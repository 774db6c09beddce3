package mirror

import (
	"fmt"
	"strings"
)

// Target identifies one of the subsystems whose mirror can be switched.
type Target string

// Supported targets.
const (
	Git         Target = "git"
	Pip         Target = "pip"
	HuggingFace Target = "huggingface"
)

// AllTargets returns every target in display order.
func AllTargets() []Target {
	return []Target{Git, Pip, HuggingFace}
}

// ParseTarget converts user input into a Target. "hf" is accepted as an alias
// of "huggingface".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "git":
		return Git, nil
	case "pip":
		return Pip, nil
	case "huggingface", "hf":
		return HuggingFace, nil
	default:
		return "", fmt.Errorf("%w %q: supported targets are git, pip and huggingface", ErrUnknownTarget, s)
	}
}

// DisplayName returns the label used in reports.
func (t Target) DisplayName() string {
	switch t {
	case Git:
		return "Git"
	case Pip:
		return "Pip"
	case HuggingFace:
		return "HuggingFace"
	default:
		return string(t)
	}
}

func (t Target) String() string { return string(t) }
