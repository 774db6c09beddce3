package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/envstore"
	"github.com/mirrorkit/mirrorkit/internal/locations"
)

var envShell string

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", "sh", "Output syntax: sh or powershell")
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print shell commands that load the persisted mirror variables",
	Long: `Print export or unset lines for the mirror environment variables held in
the user store, so a running shell picks up the last apply:

  eval "$(mirrorkit env)"
  mirrorkit env --shell powershell | Invoke-Expression`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		return writeEnv(cmd.OutOrStdout(), a.user, envShell)
	},
}

var envVarNames = []string{locations.VarPipIndexURL, locations.VarHFEndpoint, locations.VarHFHubEndpoint}

func writeEnv(w io.Writer, store envstore.Reader, shell string) error {
	shell = strings.ToLower(strings.TrimSpace(shell))
	if shell != "sh" && shell != "powershell" && shell != "pwsh" {
		return fmt.Errorf("unsupported shell %q (want sh or powershell)", shell)
	}

	for _, name := range envVarNames {
		value, ok, err := store.Get(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		set := ok && value != ""
		switch {
		case shell == "sh" && set:
			fmt.Fprintf(w, "export %s=%s\n", name, shQuote(value))
		case shell == "sh":
			fmt.Fprintf(w, "unset %s\n", name)
		case set:
			fmt.Fprintf(w, "$env:%s = %s\n", name, psQuote(value))
		default:
			fmt.Fprintf(w, "Remove-Item Env:%s -ErrorAction SilentlyContinue\n", name)
		}
	}
	return nil
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
