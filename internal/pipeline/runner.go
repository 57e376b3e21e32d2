// Package pipeline wires one backtest run end to end: parse meeting
// notes, match the trade ledger, load prices, enrich picks, and render
// the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phuslu/log"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ledger"
	"meeting-pick-lab/internal/notes"
	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/reporting"
	"meeting-pick-lab/internal/ticker"
)

// Output file names written under the output directory.
const (
	ReportFileName  = "REPORT.md"
	DetailsFileName = "pick_details.csv"
)

// Runner orchestrates a single run. Note parsing failures abort the run;
// price loading degrades to missing data so the report always comes out
// complete, with unsupported sections carrying their reason.
type Runner struct {
	parser  *notes.Parser
	fetcher *prices.Fetcher
	gen     *reporting.Generator
	logger  log.Logger

	notesDir  string
	fills     []*domain.Fill
	outputDir string
}

// NewRunner creates a runner over a notes directory and a price fetcher.
func NewRunner(notesDir string, fetcher *prices.Fetcher, logger log.Logger) *Runner {
	return &Runner{
		parser:   notes.NewParser(nil),
		fetcher:  fetcher,
		gen:      reporting.NewGenerator(),
		logger:   logger,
		notesDir: notesDir,
	}
}

// WithFills supplies the trade ledger. Without fills every pick reads as
// discussed-only.
func (r *Runner) WithFills(fills []*domain.Fill) *Runner {
	r.fills = fills
	return r
}

// WithOutputDir enables writing REPORT.md and pick_details.csv after the
// run.
func (r *Runner) WithOutputDir(dir string) *Runner {
	r.outputDir = dir
	return r
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.gen = r.gen.WithClock(clock)
	return r
}

// WithSeed sets the bootstrap seed.
func (r *Runner) WithSeed(seed int64) *Runner {
	r.gen = r.gen.WithSeed(seed)
	return r
}

// WithIterations overrides the bootstrap iteration counts.
func (r *Runner) WithIterations(naive, block int) *Runner {
	r.gen = r.gen.WithIterations(naive, block)
	return r
}

// WithWhales sets the concentration-stress exclusion list.
func (r *Runner) WithWhales(whales []string) *Runner {
	r.gen = r.gen.WithWhales(whales)
	return r
}

// Run executes the full pipeline and returns the assembled report. When
// an output directory is configured the rendered files are written too.
func (r *Runner) Run(ctx context.Context) (*reporting.Report, error) {
	meetings, err := r.parser.ParseDir(r.notesDir)
	if err != nil {
		return nil, fmt.Errorf("parse notes: %w", err)
	}

	var picks []*domain.Pick
	for _, m := range meetings {
		picks = append(picks, m.Picks...)
	}
	r.logger.Info().Int("meetings", len(meetings)).Int("picks", len(picks)).Msg("notes parsed")
	if len(picks) == 0 {
		return nil, errors.New("no picks found in notes")
	}

	r.matchLedger(picks)
	market := r.loadMarket(ctx, picks)

	report := r.gen.Generate(picks, r.fills, market)
	if err := r.writeOutputs(report); err != nil {
		return nil, err
	}
	return report, nil
}

// matchLedger stamps each pick with its sector and its acted status from
// the fill timeline around the meeting date.
func (r *Runner) matchLedger(picks []*domain.Pick) {
	matcher := ledger.NewMatcher(r.fills)

	acted := 0
	for _, p := range picks {
		p.Sector = ticker.Sector(p.Ticker)

		actedOn, reason := matcher.ActedOn(p.Ticker, p.MeetingDate, ledger.DefaultPreDays, ledger.DefaultPostDays)
		p.ActedOn = actedOn
		p.ActedReason = reason
		if actedOn {
			p.PositionShares = matcher.PositionShares(p.Ticker, p.MeetingDate)
			acted++
		}
	}
	r.logger.Info().Int("fills", len(r.fills)).Int("acted", acted).Msg("ledger matched")
}

// loadMarket fetches the price universe and enriches the picks. A failed
// fetch leaves the picks unenriched and the market series empty.
func (r *Runner) loadMarket(ctx context.Context, picks []*domain.Pick) reporting.MarketData {
	ps, err := r.fetcher.Fetch(ctx, picks, nil)
	if err != nil {
		r.logger.Warn().Err(err).Msg("price load failed, continuing without returns")
		return reporting.MarketData{}
	}
	r.fetcher.Enrich(ps, picks)

	etf := make(map[string]prices.Series, len(domain.FactorSymbols))
	for _, sym := range domain.FactorSymbols {
		if s := ps.Get(sym); s != nil {
			etf[sym] = s
		}
	}

	sector := make(map[string]prices.Series)
	for _, p := range picks {
		sym := ticker.SectorETF(p.Sector)
		if _, ok := sector[sym]; ok {
			continue
		}
		if s := ps.Get(sym); s != nil {
			sector[sym] = s
		}
	}

	return reporting.MarketData{
		Bench:  ps.Get(domain.BenchmarkSymbol),
		VIX:    ps.Get(domain.VolatilitySymbol),
		ETF:    etf,
		Sector: sector,
	}
}

func (r *Runner) writeOutputs(report *reporting.Report) error {
	if r.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return err
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(r.outputDir, ReportFileName), []byte(md), 0o644); err != nil {
		return err
	}
	csv := reporting.RenderCSV(report.Details)
	return os.WriteFile(filepath.Join(r.outputDir, DetailsFileName), []byte(csv), 0o644)
}
