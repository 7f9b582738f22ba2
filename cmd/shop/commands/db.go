package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/marshallshelly/costume-shop/cmd/shop/output"
	"github.com/marshallshelly/costume-shop/cmd/shop/tui"
	"github.com/marshallshelly/costume-shop/pkg/config"
	"github.com/marshallshelly/costume-shop/pkg/migration"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/seed"
)

var (
	// Reset and seed flags
	assumeYes bool
	seedFile  string
)

// dbCmd groups the schema commands
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the shop database",
	Long: `Manage the shop schema.

Subcommands:
  reset   - Drop and recreate the four tables
  schema  - Print the statements reset would run
  seed    - Reset, then load demo data`,
}

// dbResetCmd drops and recreates the schema
var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the schema",
	Long: `Drop the customers, costumes, orders and orders_costumes tables and create them again.
All data is lost.

Examples:
  shop db reset                  # Ask before dropping
  shop db reset --yes            # Skip the confirmation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd.Context())
	},
}

// dbSchemaCmd prints the DDL
var dbSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema()
	},
}

// dbSeedCmd resets the schema and loads demo data
var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the schema and load demo data",
	Long: `Reset the schema, then insert costumes, customers, orders and order links.
Customer passwords are stored as bcrypt hashes.

Examples:
  shop db seed --yes                 # Load the built-in demo data
  shop db seed --file data.yaml      # Load your own document`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbResetCmd, dbSchemaCmd, dbSeedCmd)

	dbResetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	dbSeedCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	dbSeedCmd.Flags().StringVar(&seedFile, "file", "", "Seed document (defaults to the built-in data)")
}

// confirmReset asks before destroying data unless --yes or --json is set.
func confirmReset(database string) (bool, error) {
	if assumeYes || jsonOutput {
		return true, nil
	}
	return tui.Confirm("Reset database",
		fmt.Sprintf("Drop and recreate every table in %s?\nAll rows will be lost.", database))
}

// targetDatabase names the database a connection will land in. A URL from
// --db or SHOP_DB_URL wins over the configured names.
func targetDatabase(cfg *config.Config) string {
	if cfg.Database.URL == "" {
		return cfg.DatabaseName()
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		// Connect reports the bad URL
		return cfg.DatabaseName()
	}
	if poolConfig.ConnConfig.Database == "" {
		// the server defaults to a database named after the user
		return poolConfig.ConnConfig.User
	}
	return poolConfig.ConnConfig.Database
}

// withSpinner runs task behind a spinner, or directly for JSON output.
func withSpinner(label string, task func() error) error {
	if jsonOutput {
		return task()
	}
	return tui.RunTask(label, task)
}

func runReset(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ok, err := confirmReset(targetDatabase(cfg))
	if err != nil {
		return err
	}
	if !ok {
		output.Warning("Reset cancelled")
		return nil
	}

	log := newLogger(cfg)
	st, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := migration.NewExecutor(db, st.Tables()).WithLogger(log)
	if err := withSpinner("Recreating tables", func() error {
		return executor.CreateTables(ctx)
	}); err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"reset": true, "database": db.Database()})
	}
	output.Success("Schema recreated in %s", db.Database())
	return nil
}

func runSchema() error {
	reg, err := models.NewRegistry()
	if err != nil {
		return err
	}
	statements, err := migration.NewExecutor(nil, reg.Tables()).Plan()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"statements": statements})
	}
	for _, stmt := range statements {
		fmt.Println(stmt)
		fmt.Println()
	}
	return nil
}

func runSeed(ctx context.Context) error {
	data, err := loadSeed()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ok, err := confirmReset(targetDatabase(cfg))
	if err != nil {
		return err
	}
	if !ok {
		output.Warning("Seed cancelled")
		return nil
	}

	log := newLogger(cfg)
	st, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var summary *seed.Summary
	if err := withSpinner("Seeding "+db.Database(), func() error {
		summary, err = seed.Run(ctx, st, data, log)
		return err
	}); err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}
	output.Section("Seeded " + db.Database())
	output.Success("%d costumes", summary.Costumes)
	output.Success("%d customers", summary.Customers)
	output.Success("%d orders", summary.Orders)
	output.Success("%d order costumes", summary.Links)
	return nil
}

func loadSeed() (*seed.Data, error) {
	if seedFile == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return seed.Parse(raw)
}
