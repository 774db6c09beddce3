package cli

import (
	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

var resetDryRun bool

func init() {
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "Print the steps without changing anything")
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset [target...]",
	Short: "Remove the mirror of the given targets (all by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := mirror.AllTargets()
		if len(args) > 0 {
			targets = targets[:0]
			for _, arg := range args {
				t, err := mirror.ParseTarget(arg)
				if err != nil {
					return err
				}
				targets = append(targets, t)
			}
		}

		selections := make(map[mirror.Target]string, len(targets))
		for _, t := range targets {
			selections[t] = mirror.OriginalName
		}
		return runApply(cmd, selections, resetDryRun)
	},
}
