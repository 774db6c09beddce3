package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/config"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

var (
	catalogShowJSON bool
	catalogForce    bool
)

func init() {
	catalogShowCmd.Flags().BoolVar(&catalogShowJSON, "json", false, "Print the catalog as a JSON document")
	catalogInitCmd.Flags().BoolVar(&catalogForce, "force", false, "Overwrite an existing catalog")
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogInitCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and manage the preset catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		w := cmd.OutOrStdout()
		if catalogShowJSON {
			data, err := a.catalog.Document()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}

		fmt.Fprintf(w, "Source: %s\n", a.catalog.Source)
		if a.catalog.Fallback && !errors.Is(a.catalog.Cause, mirror.ErrConfigNotFound) {
			fmt.Fprintf(w, "%s %v\n", markWarn, a.catalog.Cause)
		}
		for _, t := range mirror.AllTargets() {
			fmt.Fprintf(w, "\n%s:\n", t.DisplayName())
			for _, p := range a.catalog.Presets(t) {
				url := p.URL
				if url == "" {
					url = "-"
				}
				fmt.Fprintf(w, "  %s  %s\n", p.Name, url)
			}
		}
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a catalog file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCatalog(cmd, afero.NewOsFs(), args[0])
	},
}

func validateCatalog(cmd *cobra.Command, fsys afero.Fs, path string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Catalog validation: %s\n", path)

	result, err := catalog.ValidateFile(fsys, path)
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", markFail, err)
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	if !result.Valid {
		fmt.Fprintf(w, "  %s %d validation issue(s):\n", markFail, len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Path != "" {
				fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(w, "    - %s\n", issue.Message)
			}
		}
		return fmt.Errorf("catalog %s has %d validation issue(s)", path, len(result.Issues))
	}

	c, err := catalog.LoadFile(fsys, path)
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", markFail, err)
		return err
	}
	version := c.Version
	if version == "" {
		version = "unversioned"
	}
	fmt.Fprintf(w, "  %s Valid catalog (%s): %d git, %d pip, %d huggingface preset(s)\n", markOK, version,
		len(c.Presets(mirror.Git)), len(c.Presets(mirror.Pip)), len(c.Presets(mirror.HuggingFace)))
	return nil
}

var catalogInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in presets to ~/.mirrorkit/mirrors.json for editing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(config.Dir(), catalog.FileName)
		if err := writeDefaultCatalog(afero.NewOsFs(), path, catalogForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func writeDefaultCatalog(fsys afero.Fs, path string, force bool) error {
	if ok, _ := afero.Exists(fsys, path); ok && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := catalog.Default().Document()
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: writing %s", mirror.ErrPermissionDenied, path)
		}
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
