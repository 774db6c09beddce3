package mirror

import "errors"

// Error taxonomy shared by the catalog, prober, tester and apply engine.
// Callers match with errors.Is; every layer wraps these with context.
var (
	// ErrConfigNotFound means the catalog file is missing; defaults are used.
	ErrConfigNotFound = errors.New("catalog not found")

	// ErrProbeTimeout means one probe source did not answer in time.
	ErrProbeTimeout = errors.New("probe source timed out")

	// ErrToolInvocation means an external tool is missing or exited non-zero.
	ErrToolInvocation = errors.New("tool invocation failed")

	// ErrPermissionDenied means a store or file write was refused.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnknownTarget means the target name is not git, pip or huggingface.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrUnknownPreset means the preset name is not in the target's catalog list.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrTestInFlight means a reachability test for the target is still running.
	ErrTestInFlight = errors.New("test already in progress")
)
