package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/branding"
	"github.com/mirrorkit/mirrorkit/internal/catalog"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

// versionInfo is the build identity plus the catalog formats it reads.
type versionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Date          string `json:"date"`
	CatalogFormat string `json:"catalog_format"`
	UserAgent     string `json:"user_agent"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:       buildVersion,
		Commit:        buildCommit,
		Date:          buildDate,
		CatalogFormat: catalog.SupportedVersions,
		UserAgent:     branding.UserAgent(buildVersion),
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		info := currentVersion()
		switch {
		case versionShort:
			fmt.Fprintln(w, info.Version)
		case versionJSON:
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(w, string(out))
		default:
			fmt.Fprintf(w, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), info.Version, info.Commit, info.Date)
			fmt.Fprintf(w, "catalog format %s\n", info.CatalogFormat)
		}
		return nil
	},
}
