package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/.mirrorkit/config.yaml.

Keys: catalog, probe_timeout, test_timeout, git_timeout, git_binary,
rewrite_from, user_store, log_level.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective settings after defaults, file and environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Current()
		if err != nil {
			return fmt.Errorf("reading settings: %w", err)
		}
		catalog := s.Catalog
		if catalog == "" {
			catalog = "(auto)"
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "catalog\t%s\n", catalog)
		fmt.Fprintf(w, "probe_timeout\t%s\n", s.ProbeTimeout)
		fmt.Fprintf(w, "test_timeout\t%s\n", s.TestTimeout)
		fmt.Fprintf(w, "git_timeout\t%s\n", s.GitTimeout)
		fmt.Fprintf(w, "git_binary\t%s\n", s.GitBinary)
		fmt.Fprintf(w, "rewrite_from\t%s\n", strings.Join(s.RewriteFrom, ","))
		fmt.Fprintf(w, "user_store\t%s\n", s.UserStore)
		fmt.Fprintf(w, "log_level\t%s\n", s.LogLevel)
		return w.Flush()
	},
}
