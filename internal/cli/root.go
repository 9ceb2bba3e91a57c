// Package cli implements the hemolinkctl command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hemolink/internal/platform/database"
	"hemolink/migrations"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global flags
	dbPath string
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hemolinkctl",
	Short: "Operator tooling for the blood donor service",
	Long: `hemolinkctl works against the same rules and storage the server uses.

It provides:
  - Offline suitability scoring with the deterministic rule engine
  - Health narrative normalization into canonical flags
  - Donor directory inspection straight from the database
  - Fixture loading for demos and local development`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "hemolink.db",
		"path to the sqlite database")

	rootCmd.AddCommand(versionCmd)
}

// openDB opens the sqlite database behind --db and applies migrations.
func openDB(ctx context.Context) (*database.DB, error) {
	cfg := database.DefaultConfig()
	cfg.Path = dbPath
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hemolinkctl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
	},
}
