package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elecmate/quotedesk/internal/config"
	"github.com/elecmate/quotedesk/internal/db"
	"github.com/elecmate/quotedesk/internal/logging"
	"github.com/elecmate/quotedesk/internal/migrations"
	"github.com/elecmate/quotedesk/internal/seed"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "quotedesk-server",
		Short:         "Serve the quote profitability API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "optional config file (yaml, toml or json)")

	return cmd
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return err
	}
	for _, warning := range cfg.Warnings() {
		logger.Warn().Msg(warning)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	version, err := migrations.Version(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	stats, err := seed.Run(ctx, database, seed.Config{DemoQuote: cfg.SeedDemo})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	logger.Info().
		Str("db_path", cfg.DBPath).
		Int64("schema_version", version).
		Int("seed_inserts", stats.Inserts).
		Msg("database ready")

	srv, err := newServer(database, cfg.APIToken)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(srv, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Bool("auth", srv.auth.enabled()).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
