package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	donorstore "hemolink/internal/donor/store"
	"hemolink/internal/request"
	"hemolink/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load donor and request fixtures into the database",
	Long: `Load a YAML fixture file into the database. Fixtures pass the same
validation as API requests, so anything that seeds also posts.

Examples:
  hemolinkctl seed --file seed.yaml
  hemolinkctl seed --file demo/seed.yaml --db /tmp/demo.db`,
	RunE: runSeed,
}

var seedFile string

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFile, "file", "seed.yaml", "fixture file to load")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	loader := seed.New(
		donorstore.NewSQLite(db.DB),
		request.NewSQLite(db.DB),
		slog.Default(),
	)

	res, err := loader.LoadFile(ctx, seedFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d donors and %d requests from %s\n",
		res.Donors, res.Requests, seedFile)
	return nil
}
