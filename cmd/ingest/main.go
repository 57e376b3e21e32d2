// Command ingest loads a trade-ledger JSON export into the Postgres fill
// store so backtest runs can read fills with --postgres-dsn.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"meeting-pick-lab/internal/ledger"
	"meeting-pick-lab/internal/storage/migrations"
	pgstore "meeting-pick-lab/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ingest",
		Short:        "Load a trade-ledger JSON export into Postgres",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("trades", "", "trade ledger JSON export (required)")
	flags.String("postgres-dsn", "", "Postgres connection string (required)")
	_ = cmd.MarkFlagRequired("trades")
	_ = cmd.MarkFlagRequired("postgres-dsn")

	viper.SetEnvPrefix("PICKLAB")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}

	path := viper.GetString("trades")
	fills, err := ledger.LoadFills(path)
	if err != nil {
		return fmt.Errorf("load fills: %w", err)
	}
	logger.Info().Int("fills", len(fills)).Str("path", path).Msg("fills parsed")

	pool, err := pgstore.NewPool(ctx, viper.GetString("postgres-dsn"))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	if err := pgstore.NewFillStore(pool).InsertBulk(ctx, fills); err != nil {
		return fmt.Errorf("insert fills: %w", err)
	}
	logger.Info().Int("fills", len(fills)).Msg("fills ingested")
	return nil
}
