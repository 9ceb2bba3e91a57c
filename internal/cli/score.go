package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hemolink/internal/eligibility"
	"hemolink/internal/healthtext"
	strutil "hemolink/pkg/platform/strings"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a donor with the deterministic rule engine",
	Long: `Score a hypothetical donor offline, using the same rules the server
falls back to when the inference service is unreachable.

Examples:
  hemolinkctl score --days 95 --distance 3.2 --available
  hemolinkctl score --days 30 --flags diabetes,medication
  hemolinkctl score                             # never donated, unavailable`,
	RunE: runScore,
}

var (
	scoreDays      int
	scoreDistance  float64
	scoreAvailable bool
	scoreFlags     []string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreDays, "days", eligibility.NeverDonatedDays,
		"days since the last donation (omit for never donated)")
	scoreCmd.Flags().Float64Var(&scoreDistance, "distance", 0,
		"distance to the seeker in km")
	scoreCmd.Flags().BoolVar(&scoreAvailable, "available", false,
		"donor is available right now")
	scoreCmd.Flags().StringSliceVar(&scoreFlags, "flags", nil,
		"health flags (comma separated: "+strings.Join(healthtext.Strings(healthtext.AllFlags), ", ")+")")
}

func runScore(cmd *cobra.Command, args []string) error {
	flags := strutil.DedupeAndTrimLower(scoreFlags)
	for _, f := range flags {
		if !healthtext.IsValid(f) {
			return fmt.Errorf("unknown health flag %q (valid: %s)",
				f, strings.Join(healthtext.Strings(healthtext.AllFlags), ", "))
		}
	}

	result := eligibility.Score(eligibility.Input{
		DaysSinceLastDonation: scoreDays,
		DistanceKm:            scoreDistance,
		AvailableNow:          scoreAvailable,
		HealthFlags:           healthtext.Canon(flags),
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Score: %d/100\n", result.Score)
	for _, reason := range result.Reasons {
		fmt.Fprintf(out, "  - %s\n", reason)
	}
	return nil
}
