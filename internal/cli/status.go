package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/probe"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active mirror of every target",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		states := a.prober().ProbeAll(cmd.Context())

		if statusJSON {
			return printStatusJSON(cmd, states)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TARGET\tMIRROR\tSOURCE")
		for _, target := range mirror.AllTargets() {
			s := states[target]
			source := s.Source
			if source == "" {
				source = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", target.DisplayName(), stateDetail(s), source)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, target := range mirror.AllTargets() {
			for _, skip := range states[target].Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s skipped: %v\n", markWarn, target.DisplayName(), skip.Source, skip.Err)
			}
		}
		if a.catalog.Fallback {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using built-in presets (%v)\n", a.catalog.Cause)
		}
		return nil
	},
}

type statusEntry struct {
	Target  string   `json:"target"`
	State   string   `json:"state"`
	Preset  string   `json:"preset,omitempty"`
	URL     string   `json:"url,omitempty"`
	Source  string   `json:"source,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

func printStatusJSON(cmd *cobra.Command, states map[mirror.Target]probe.State) error {
	var entries []statusEntry
	for _, target := range mirror.AllTargets() {
		s := states[target]
		e := statusEntry{
			Target: string(target),
			State:  s.Kind.String(),
			URL:    s.URL,
			Source: s.Source,
		}
		if s.Kind == probe.Matched {
			e.Preset = s.Preset.Name
		}
		for _, skip := range s.Skipped {
			e.Skipped = append(e.Skipped, fmt.Sprintf("%s: %v", skip.Source, skip.Err))
		}
		entries = append(entries, e)
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling status: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
