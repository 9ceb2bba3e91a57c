package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hemolink/internal/healthtext"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <text>",
	Short: "Extract health flags from a free-text narrative",
	Long: `Run the local health-text normalizer over a narrative and print the
canonical flags it extracts.

Examples:
  hemolinkctl normalize "diabetic, on bp medication"
  hemolinkctl normalize had a fever last week`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	flags := healthtext.Normalize(text)

	out := cmd.OutOrStdout()
	if len(flags) == 0 {
		fmt.Fprintln(out, "No health flags detected.")
		return nil
	}
	for _, f := range flags {
		fmt.Fprintln(out, string(f))
	}
	return nil
}
