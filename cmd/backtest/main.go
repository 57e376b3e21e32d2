// Command backtest runs the full meeting-pick backtest: parse the notes
// directory, match the trade ledger, load prices, and write the report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"meeting-pick-lab/internal/analysis"
	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ledger"
	"meeting-pick-lab/internal/pipeline"
	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/reporting"
	"meeting-pick-lab/internal/storage"
	"meeting-pick-lab/internal/storage/badgercache"
	chstore "meeting-pick-lab/internal/storage/clickhouse"
	"meeting-pick-lab/internal/storage/memory"
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
		Use:          "backtest",
		Short:        "Backtest meeting picks against daily closes and the trade ledger",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("notes-dir", "", "directory of meeting note markdown files (required)")
	flags.String("trades", "", "trade ledger JSON export")
	flags.String("postgres-dsn", "", "load fills from the Postgres fill store instead of --trades")
	flags.String("clickhouse-dsn", "", "use the ClickHouse price store as the price cache")
	flags.String("cache-dir", ".cache/prices", "Badger price cache directory")
	flags.Bool("use-memory", false, "in-memory price cache, nothing persisted")
	flags.String("out", "out", "output directory for REPORT.md and pick_details.csv")
	flags.Int64("seed", analysis.DefaultSeed, "bootstrap seed")
	flags.Int("naive-iterations", analysis.NaiveIterations, "naive bootstrap iterations")
	flags.Int("block-iterations", analysis.BlockIterations, "block bootstrap iterations")
	flags.StringSlice("whales", analysis.DefaultWhales, "concentration-stress exclusion tickers")
	flags.Bool("verbose", false, "debug logging")
	_ = cmd.MarkFlagRequired("notes-dir")

	viper.SetEnvPrefix("PICKLAB")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(viper.GetBool("verbose"))

	cache, closeCache, err := openCache(ctx, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	fills, err := loadFills(ctx, logger)
	if err != nil {
		return err
	}

	provider := prices.NewYahooClient(prices.WithLogger(logger))
	fetcher := prices.NewFetcher(provider, cache, logger)

	runner := pipeline.NewRunner(viper.GetString("notes-dir"), fetcher, logger).
		WithFills(fills).
		WithOutputDir(viper.GetString("out")).
		WithSeed(viper.GetInt64("seed")).
		WithIterations(viper.GetInt("naive-iterations"), viper.GetInt("block-iterations")).
		WithWhales(viper.GetStringSlice("whales"))

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	reporting.RenderConsole(os.Stdout, report)
	logger.Info().Str("dir", viper.GetString("out")).Msg("report written")
	return nil
}

// openCache picks the price cache backend: ClickHouse when a DSN is set,
// plain memory with --use-memory, Badger otherwise.
func openCache(ctx context.Context, logger log.Logger) (storage.PriceCache, func(), error) {
	if dsn := viper.GetString("clickhouse-dsn"); dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse price store: %w", err)
		}
		return chstore.NewPriceStore(conn), func() {
			if err := conn.Close(); err != nil {
				logger.Warn().Err(err).Msg("clickhouse close failed")
			}
		}, nil
	}

	if viper.GetBool("use-memory") {
		return memory.NewPriceCache(), func() {}, nil
	}

	cache, err := badgercache.Open(viper.GetString("cache-dir"))
	if err != nil {
		return nil, nil, fmt.Errorf("open price cache: %w", err)
	}
	return cache, func() {
		if err := cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("price cache close failed")
		}
	}, nil
}

// loadFills reads the ledger from Postgres when a DSN is set, otherwise
// from the JSON export. No source means every pick reads discussed-only.
func loadFills(ctx context.Context, logger log.Logger) ([]*domain.Fill, error) {
	if dsn := viper.GetString("postgres-dsn"); dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		fills, err := pgstore.NewFillStore(pool).GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load fills: %w", err)
		}
		logger.Info().Int("fills", len(fills)).Msg("fills loaded from postgres")
		return fills, nil
	}

	path := viper.GetString("trades")
	if path == "" {
		logger.Warn().Msg("no trade ledger given, acted-on matching disabled")
		return nil, nil
	}
	fills, err := ledger.LoadFills(path)
	if err != nil {
		return nil, fmt.Errorf("load fills: %w", err)
	}
	logger.Info().Int("fills", len(fills)).Str("path", path).Msg("fills loaded")
	return fills, nil
}

func newLogger(verbose bool) log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}
