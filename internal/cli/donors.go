package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hemolink/internal/donor/models"
	"hemolink/internal/donor/store"
	"hemolink/internal/healthtext"
)

var donorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "List stored donors",
	Long: `List every donor in the database as a table.

Examples:
  hemolinkctl donors
  hemolinkctl donors --db /var/lib/hemolink/hemolink.db`,
	RunE: runDonors,
}

func init() {
	rootCmd.AddCommand(donorsCmd)
}

func runDonors(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	donors, err := store.NewSQLite(db.DB).List(ctx)
	if err != nil {
		return fmt.Errorf("list donors: %w", err)
	}

	return donorsTable(cmd.OutOrStdout(), donors)
}

func donorsTable(w io.Writer, donors []*models.Donor) error {
	if len(donors) == 0 {
		fmt.Fprintln(w, "No donors found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGROUP\tCITY\tAVAILABLE\tLAST DONATION\tFLAGS")
	fmt.Fprintln(tw, "----\t-----\t----\t---------\t-------------\t-----")

	for _, d := range donors {
		available := "no"
		if d.IsAvailableNow {
			available = "yes"
		}

		lastDonation := "never"
		if d.LastDonationDate != nil {
			lastDonation = d.LastDonationDate.Format("2006-01-02")
		}

		flags := "-"
		if len(d.HealthFlags) > 0 {
			flags = strings.Join(healthtext.Strings(d.HealthFlags), ",")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(d.Name, 24),
			d.BloodGroup,
			truncate(d.City, 18),
			available,
			lastDonation,
			flags,
		)
	}

	return tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
