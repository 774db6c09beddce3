package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/probe"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [target]",
	Short: "List the presets of each target",
	Long:  `List the catalog presets per target. The active preset is marked with *.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a preset for display.
type listEntry struct {
	Target string `json:"target"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

func runList(cmd *cobra.Command, args []string) error {
	targets := mirror.AllTargets()
	if len(args) == 1 {
		t, err := mirror.ParseTarget(args[0])
		if err != nil {
			return err
		}
		targets = []mirror.Target{t}
	}

	a := newApp()
	states := a.prober().ProbeAll(cmd.Context())

	var entries []listEntry
	for _, t := range targets {
		s := states[t]
		for _, p := range a.catalog.Presets(t) {
			active := s.Kind == probe.Matched && mirror.NormalizeName(s.Preset.Name) == mirror.NormalizeName(p.Name)
			if s.Kind == probe.Unconfigured && p.IsOriginal() {
				active = true
			}
			entries = append(entries, listEntry{Target: string(t), Name: p.Name, URL: p.URL, Active: active})
		}
	}

	if listJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling presets: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TARGET\t\tNAME\tURL")
	for _, e := range entries {
		mark := ""
		if e.Active {
			mark = "*"
		}
		url := e.URL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Target, mark, e.Name, url)
	}
	return w.Flush()
}
