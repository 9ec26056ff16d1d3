package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tarificateur/go_backend/internal/app"
	"tarificateur/go_backend/internal/app/config"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tarificateur",
	Short: "Construction-insurance quote tool (DO, TRC, RCMO)",
	Long: `tarificateur serves the quote API, the web front-end, or both.

Quotes are stored in SQLite by default; set DATABASE_URL to a postgres://
URL to use PostgreSQL. Generated Word and PDF proposals are kept in DOC_DIR,
or in Redis when REDIS_ADDR is set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quote API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunAPI(cmd.Context(), cfg, logger)
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the web front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunWeb(cmd.Context(), cfg, logger)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Serve the quote API and the web front-end together",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return app.RunAPI(ctx, cfg, logger) })
		g.Go(func() error { return app.RunWeb(ctx, cfg, logger) })
		return g.Wait()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the quote table if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		logger.Info("schema ready", zap.Bool("postgres", cfg.Postgres()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	rootCmd.AddCommand(serveCmd, webCmd, allCmd, migrateCmd, listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
