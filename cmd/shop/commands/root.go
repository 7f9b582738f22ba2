package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/costume-shop/pkg/config"
	"github.com/marshallshelly/costume-shop/pkg/logger"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/store"
)

var (
	// Global flags
	configPath string
	env        string
	dbURL      string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "Costume shop order management",
	Long: `shop serves the costume shop API and manages its PostgreSQL database.

Commands:
  serve      - Run the HTTP API
  db reset   - Drop and recreate the schema
  db schema  - Print the schema statements
  db seed    - Reset the schema and load demo data
  list       - Print costumes, customers or orders`,
	SilenceUsage: true,
	Version:      "0.4.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "shop.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment: development, test or production")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides the config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if env != "" {
		cfg.Environment = env
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if verbose {
		cfg.Log.Level = logger.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.Log
	lc.Component = "shop"
	if lc.Output == nil {
		lc.Output = os.Stderr
	}
	return logger.New(lc)
}

// openStore connects the pool and builds the adapters. The caller closes db.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, *runtime.DB, error) {
	db, err := runtime.Connect(ctx, cfg.RuntimeConfig(log))
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return st, db, nil
}
