package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

func init() {
	rootCmd.AddCommand(traceCmd)
}

var traceCmd = &cobra.Command{
	Use:   "trace <target>",
	Short: "Show every location of a target in precedence order",
	Long: `Read every location that can hold the target's mirror, in the order the
status command consults them, followed by the machine-scope locations that
can override a user selection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := mirror.ParseTarget(args[0])
		if err != nil {
			return err
		}

		a := newApp()
		readings, err := a.prober().Trace(cmd.Context(), target)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s locations (first set value wins):\n", target.DisplayName())
		winner := false
		systemHeader := false
		for _, r := range readings {
			if r.System && !systemHeader {
				fmt.Fprintln(w, "\nMachine scope (read-only):")
				systemHeader = true
			}
			switch {
			case r.Err != nil:
				fmt.Fprintf(w, "  %s %s: %v\n", markWarn, r.Source, r.Err)
			case r.Set:
				label := r.URL
				if p, ok := a.catalog.Match(target, r.URL); ok {
					label = fmt.Sprintf("%s (%s)", r.URL, p.Name)
				}
				suffix := ""
				if !r.System && !winner {
					suffix = "  <- active"
					winner = true
				}
				fmt.Fprintf(w, "  %s %s = %s%s\n", markOK, r.Source, label, suffix)
			default:
				fmt.Fprintf(w, "  %s %s\n", markMiss, r.Source)
			}
		}
		return nil
	},
}
