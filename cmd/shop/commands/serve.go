package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/costume-shop/pkg/api"
	"github.com/marshallshelly/costume-shop/pkg/auth"
)

var (
	// Serve flags
	addr      string
	staticDir string
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON API under /api and serve static files from the static directory.

Examples:
  shop serve                          # Listen on the configured address
  shop serve --addr :8080             # Override the listen address
  shop serve --env production         # Use the production database settings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config)")
	serveCmd.Flags().StringVar(&staticDir, "static", "", "Static file directory (overrides the config)")
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if staticDir != "" {
		cfg.Server.StaticDir = staticDir
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens := auth.NewIssuer(cfg.Server.AccessTokenSecret, cfg.Server.AccessTokenTTL)
	if tokens == nil {
		log.Warn("access token secret not set, login will not issue tokens")
	}

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(api.Deps{
			Costumes:  st.Costumes,
			Customers: st.Customers,
			Orders:    st.Orders,
			Links:     st.OrderCostumes,
			Tokens:    tokens,
			StaticDir: cfg.Server.StaticDir,
			Logger:    log,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
