package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/mirrorkit/mirrorkit/internal/apply"
	"github.com/mirrorkit/mirrorkit/internal/probe"
	"github.com/mirrorkit/mirrorkit/internal/reach"
)

// Report line markers.
const (
	markOK   = "[ OK ]"
	markWarn = "[WARN]"
	markFail = "[FAIL]"
	markMiss = "[MISS]"
)

func printReport(w io.Writer, report apply.Report) {
	for _, target := range report.Targets() {
		o := report[target]
		switch o.Status {
		case apply.Applied:
			if o.Preset.IsOriginal() {
				fmt.Fprintf(w, "%s %s: mirror removed\n", markOK, target.DisplayName())
			} else {
				fmt.Fprintf(w, "%s %s: %s (%s)\n", markOK, target.DisplayName(), o.Preset.Name, o.Preset.URL)
			}
		default:
			fmt.Fprintf(w, "%s %s: %v\n", markFail, target.DisplayName(), o.Err)
		}
		for _, warning := range o.Warnings {
			fmt.Fprintf(w, "  %s %s\n", markWarn, warning)
		}
	}
}

func stateDetail(s probe.State) string {
	switch s.Kind {
	case probe.Matched:
		if s.Preset.URL == "" || s.URL == "" {
			return s.Preset.Name
		}
		return fmt.Sprintf("%s (%s)", s.Preset.Name, s.URL)
	case probe.Unrecognized:
		return s.URL + " (not in catalog)"
	default:
		return "unconfigured"
	}
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func printTestResult(w io.Writer, r reach.Result) {
	name := r.Preset.Name
	switch {
	case r.Synthetic:
		fmt.Fprintf(w, "%s %-12s no mirror configured\n", markOK, name)
	case r.OK:
		fmt.Fprintf(w, "%s %-12s %s (HTTP %d)\n", markOK, name, formatLatency(r.Latency), r.Status)
	default:
		fmt.Fprintf(w, "%s %-12s %s: %v\n", markFail, name, r.Failure, r.Err)
	}
}
