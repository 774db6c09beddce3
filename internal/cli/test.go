package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mirrorkit/mirrorkit/internal/mirror"
	"github.com/mirrorkit/mirrorkit/internal/probe"
	"github.com/mirrorkit/mirrorkit/internal/reach"
)

var testAll bool

func init() {
	testCmd.Flags().BoolVar(&testAll, "all", false, "Test every preset of the target, fastest first")
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test <target> [preset]",
	Short: "Check that a mirror answers",
	Long: `Send a single HEAD request to a preset's URL and report the latency. Any
HTTP response counts as reachable. Without a preset the active one is tested.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := mirror.ParseTarget(args[0])
		if err != nil {
			return err
		}
		a := newApp()
		tester := a.tester()
		w := cmd.OutOrStdout()

		if testAll {
			results, err := testEvery(cmd, tester, a.catalog.Names(target), target)
			if err != nil {
				return err
			}
			for _, r := range results {
				printTestResult(w, r)
			}
			return nil
		}

		name := ""
		if len(args) == 2 {
			name = args[1]
		} else {
			state, err := a.prober().Probe(cmd.Context(), target)
			if err != nil {
				return err
			}
			switch state.Kind {
			case probe.Matched:
				name = state.Preset.Name
			case probe.Unrecognized:
				return fmt.Errorf("active %s mirror %s is not in the catalog; name a preset to test", target, state.URL)
			default:
				name = mirror.OriginalName
			}
		}

		ch, err := tester.Test(cmd.Context(), target, name)
		if err != nil {
			return err
		}
		printTestResult(w, <-ch)
		return nil
	},
}

// testEvery tests names one after another and sorts reachable presets by
// latency, failures last.
func testEvery(cmd *cobra.Command, tester *reach.Tester, names []string, target mirror.Target) ([]reach.Result, error) {
	results := make([]reach.Result, 0, len(names))
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "Testing %s ...\n", name)
		r, err := tester.Wait(cmd.Context(), target, name)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	sortResults(results)
	return results, nil
}

func sortResults(results []reach.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.OK != b.OK {
			return a.OK
		}
		if a.Synthetic != b.Synthetic {
			return b.Synthetic
		}
		return a.Latency < b.Latency
	})
}
