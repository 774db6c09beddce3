package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/apply"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

var applyDryRun bool

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the steps without changing anything")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <target>=<preset>...",
	Short: "Switch targets to catalog presets",
	Long: `Switch each target to the named preset. Every existing setting of the
target is cleared first, then the preset's URL is written. Use the preset
"original" (or 原始) to remove the mirror.

Examples:
  mirrorkit apply pip=清华
  mirrorkit apply git=阿里云 hf=镜像1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selections, err := parseSelections(args)
		if err != nil {
			return err
		}
		return runApply(cmd, selections, applyDryRun)
	},
}

// parseSelections turns target=preset arguments into a selection map.
func parseSelections(args []string) (map[mirror.Target]string, error) {
	selections := make(map[mirror.Target]string, len(args))
	for _, arg := range args {
		t, name, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid selection %q: want <target>=<preset>", arg)
		}
		target, err := mirror.ParseTarget(t)
		if err != nil {
			return nil, err
		}
		if _, dup := selections[target]; dup {
			return nil, fmt.Errorf("target %s selected more than once", target)
		}
		selections[target] = strings.TrimSpace(name)
	}
	return selections, nil
}

func runApply(cmd *cobra.Command, selections map[mirror.Target]string, dryRun bool) error {
	a := newApp()
	engine := a.engine()
	w := cmd.OutOrStdout()

	if dryRun {
		steps, err := engine.Plan(selections)
		for _, s := range steps {
			switch s.Kind {
			case apply.StepWrite:
				fmt.Fprintf(w, "%-6s %-12s %s = %s\n", s.Kind, s.Target, s.Location, s.Value)
			default:
				fmt.Fprintf(w, "%-6s %-12s %s\n", s.Kind, s.Target, s.Location)
			}
		}
		return err
	}

	report := <-engine.Start(cmd.Context(), selections)
	printReport(w, report)
	if report.Failed() {
		return errTargetsFailed
	}
	return nil
}
