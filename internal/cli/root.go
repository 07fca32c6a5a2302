// Package cli implements explorectl, the operator command line for the
// explorer cache: schema migration, one-off lookups and targeted purges.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/city-explorer-service/internal/app"
	"github.com/couchcryptid/city-explorer-service/internal/config"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// NewRootCmd builds the explorectl command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explorectl",
		Short: "Operate the city explorer cache",
		Long: `explorectl works directly against the explorer store using the same
environment configuration as the API server (STORE_DRIVER, DATABASE_URL,
SQLITE_PATH, provider keys). A .env file in the working directory is loaded
first when present.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewPurgeCmd())

	return cmd
}

// Execute runs the root command against os.Args, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads .env and then the process environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildApp wires a full service for one command invocation. Logs go to the
// command's stderr so stdout carries only results.
func buildApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// The CLI never publishes refresh events.
	cfg.KafkaEnabled = false

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
	return app.Build(ctx, cfg, logger, observability.NewDetachedMetrics())
}
