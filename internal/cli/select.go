package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/probe"
)

const keepCurrent = "(keep current)"

func init() {
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a preset for each target from numbered menus",
	Long: `Walk through every target, showing its presets with the active one
marked, and apply the chosen presets in one pass. Choose "keep current" to
leave a target untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		states := a.prober().ProbeAll(cmd.Context())

		selections, err := promptSelections(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), a.catalog.Names, states)
		if err != nil {
			return err
		}
		if len(selections) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nNothing to change.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return runApply(cmd, selections, false)
	},
}

// promptSelections asks for one preset per target. Targets left on "keep
// current" are omitted from the result.
func promptSelections(reader *bufio.Reader, w io.Writer, names func(mirror.Target) []string, states map[mirror.Target]probe.State) (map[mirror.Target]string, error) {
	selections := make(map[mirror.Target]string)
	for _, target := range mirror.AllTargets() {
		presets := names(target)
		if len(presets) == 0 {
			continue
		}
		items := append([]string{keepCurrent}, presets...)

		state := states[target]
		prompt := fmt.Sprintf("%s (current: %s):", target.DisplayName(), stateDetail(state))
		idx, err := selectFromList(reader, w, prompt, items)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			continue
		}
		selections[target] = items[idx]
	}
	return selections, nil
}

// selectFromList prints a numbered menu and reads the chosen index.
func selectFromList(reader *bufio.Reader, w io.Writer, prompt string, items []string) (int, error) {
	fmt.Fprintf(w, "\n%s\n", prompt)
	for i, item := range items {
		fmt.Fprintf(w, "  %d) %s\n", i+1, item)
	}
	fmt.Fprintf(w, "Enter number [1-%d]: ", len(items))

	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
		return 0, fmt.Errorf("reading selection: %w", err)
	}

	num, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || num < 1 || num > len(items) {
		return 0, fmt.Errorf("invalid selection %q: choose 1-%d", strings.TrimSpace(line), len(items))
	}

	return num - 1, nil
}
