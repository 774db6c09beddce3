package cli

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/mirrorkit/mirrorkit/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagCatalog string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` switches the Git, Pip and HuggingFace mirrors between the named
presets of a catalog. It detects the active mirror across environment
variables, the persistent user store and tool configuration files, tests
candidate mirrors, and applies a new selection by clearing every old setting
before writing the new one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to the preset catalog (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every source read and git invocation")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// newLogger builds the stderr logger for level ("debug", "info", "warn",
// "error"). --verbose forces debug.
func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// errTargetsFailed makes the process exit non-zero after a partial apply.
var errTargetsFailed = errors.New("one or more targets failed to apply")
