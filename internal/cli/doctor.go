package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/platform"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tools and locations mirrorkit depends on",
	Long: `Run diagnostic checks: the git binary, the catalog, the user store, and
machine-scope settings that would override a user selection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		w := cmd.OutOrStdout()
		a.checkGit(cmd.Context(), w)
		a.checkCatalog(w)
		a.checkUserStore(w)
		a.checkSystem(cmd.Context(), w)
		return nil
	},
}

func (a *app) checkGit(ctx context.Context, w io.Writer) {
	fmt.Fprintln(w, "Git check:")
	path, err := a.git.LookPath()
	if err != nil {
		fmt.Fprintf(w, "  %s %s not found; git mirrors cannot be read or applied\n", markMiss, a.git.Binary)
		return
	}
	out, err := a.git.Run(ctx, "--version")
	if err != nil {
		fmt.Fprintf(w, "  %s %s found at %s but failed to run: %v\n", markWarn, a.git.Binary, path, err)
		return
	}
	fmt.Fprintf(w, "  %s %s (%s)\n", markOK, strings.TrimSpace(string(out)), path)
}

func (a *app) checkCatalog(w io.Writer) {
	fmt.Fprintln(w, "Catalog check:")
	c := a.catalog
	switch {
	case c.Fallback && errors.Is(c.Cause, mirror.ErrConfigNotFound):
		fmt.Fprintf(w, "  %s no catalog file, using built-in presets (%v)\n", markOK, c.Cause)
	case c.Fallback:
		fmt.Fprintf(w, "  %s %v\n", markFail, c.Cause)
		fmt.Fprintf(w, "  %s using built-in presets instead\n", markWarn)
	default:
		fmt.Fprintf(w, "  %s %s\n", markOK, c.Source)
	}
}

func (a *app) checkUserStore(w io.Writer) {
	fmt.Fprintln(w, "User store check:")
	if p, ok := a.user.(interface{ Path() string }); ok {
		fmt.Fprintf(w, "  %s %s\n", markOK, p.Path())
		fmt.Fprintf(w, "  %s new shells need `eval \"$(%s env)\"` to see pip and huggingface variables\n", markWarn, branding.CLIName())
		return
	}
	fmt.Fprintf(w, "  %s persistent user environment\n", markOK)
}

func (a *app) checkSystem(ctx context.Context, w io.Writer) {
	fmt.Fprintln(w, "Machine scope check:")
	found := false
	for _, target := range mirror.AllTargets() {
		for _, r := range a.prober().System(ctx, target) {
			switch {
			case r.Err != nil:
				fmt.Fprintf(w, "  %s %s: %v\n", markWarn, r.Source, r.Err)
			case r.Set:
				found = true
				fmt.Fprintf(w, "  %s %s = %s overrides user selections for %s\n", markWarn, r.Source, r.URL, target.DisplayName())
			}
		}
	}
	if !found {
		fmt.Fprintf(w, "  %s no machine-scope mirror settings\n", markOK)
		return
	}
	if platform.IsElevated() {
		fmt.Fprintf(w, "  %s running elevated; machine settings must still be edited by hand\n", markWarn)
	} else {
		fmt.Fprintf(w, "  %s %s\n", markWarn, platform.ElevationHint())
	}
}
