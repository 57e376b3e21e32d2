package prices

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ticker"
)

const (
	// RangeBufferDays pads both ends of the fetch range so nearest-day
	// lookups near the edges still resolve.
	RangeBufferDays = 7

	// WarmupDays extends the benchmark and volatility series backward to
	// cover moving-average warmup.
	WarmupDays = 80

	// FetchBatchSize caps how many symbols one provider pass covers.
	FetchBatchSize = 50
)

// Cache persists per-symbol series between runs. Load returns (nil, nil)
// on a miss.
type Cache interface {
	Load(ctx context.Context, symbol string) (Series, error)
	Save(ctx context.Context, symbol string, series Series) error
}

// PriceSet holds every series loaded for one run.
type PriceSet struct {
	Series map[string]Series
	Start  time.Time
	End    time.Time
}

// Get returns the series for the symbol, nil when it was never loaded.
func (ps *PriceSet) Get(symbol string) Series {
	if ps == nil {
		return nil
	}
	return ps.Series[symbol]
}

// Fetcher loads close series cache-first and enriches picks with forward
// returns.
type Fetcher struct {
	provider Provider
	cache    Cache
	logger   log.Logger
	now      func() time.Time
}

// NewFetcher creates a Fetcher. The cache may be nil, in which case every
// symbol is fetched from the provider.
func NewFetcher(provider Provider, cache Cache, logger log.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock. Used by tests and replayed runs.
func (f *Fetcher) WithNow(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Fetch loads the series universe for the picks: every pick symbol, the
// benchmark, the volatility index, the factor ETFs, the sector ETFs of
// the picks, and any extra symbols.
func (f *Fetcher) Fetch(ctx context.Context, picks []*domain.Pick, extra []string) (*PriceSet, error) {
	if len(picks) == 0 {
		return &PriceSet{Series: map[string]Series{}}, nil
	}

	minDate, maxDate := picks[0].MeetingDate, picks[0].MeetingDate
	for _, p := range picks[1:] {
		if p.MeetingDate.Before(minDate) {
			minDate = p.MeetingDate
		}
		if p.MeetingDate.After(maxDate) {
			maxDate = p.MeetingDate
		}
	}

	maxWindow := domain.AllWindows[len(domain.AllWindows)-1]
	start := domain.AddDays(minDate, -RangeBufferDays)
	end := domain.AddDays(maxDate, maxWindow*3/2+RangeBufferDays)
	today := domain.Day(f.now())
	if end.After(today) {
		end = today
	}

	symbols := f.collectSymbols(picks, extra)
	ps := &PriceSet{
		Series: make(map[string]Series, len(symbols)),
		Start:  start,
		End:    end,
	}

	for i := 0; i < len(symbols); i += FetchBatchSize {
		batch := symbols[i:min(i+FetchBatchSize, len(symbols))]
		f.logger.Info().Int("batch", i/FetchBatchSize+1).Int("symbols", len(batch)).Msg("loading price batch")
		for _, sym := range batch {
			symStart := start
			if sym == domain.BenchmarkSymbol || sym == domain.VolatilitySymbol {
				symStart = domain.AddDays(start, -WarmupDays)
			}
			series := f.loadOne(ctx, sym, symStart, end)
			if series != nil {
				ps.Series[sym] = series
			}
		}
	}

	f.injectPrivatized(ps, symbols)
	return ps, nil
}

// loadOne resolves one symbol cache-first. Provider failures are logged
// and leave the symbol missing rather than failing the run.
func (f *Fetcher) loadOne(ctx context.Context, symbol string, start, end time.Time) Series {
	if f.cache != nil {
		cached, err := f.cache.Load(ctx, symbol)
		if err != nil {
			f.logger.Warn().Err(err).Str("symbol", symbol).Msg("price cache load failed")
		} else if len(cached) > 0 {
			return cached
		}
	}

	series, err := f.provider.History(ctx, symbol, start, end)
	if err != nil {
		f.logger.Warn().Err(err).Str("symbol", symbol).Msg("price fetch failed")
		return nil
	}
	if len(series) == 0 {
		return nil
	}

	if f.cache != nil {
		if err := f.cache.Save(ctx, symbol, series); err != nil {
			f.logger.Warn().Err(err).Str("symbol", symbol).Msg("price cache save failed")
		}
	}
	return series
}

// injectPrivatized backfills the last deal price for tickers that left
// the market mid-sample. A symbol with no data at all gets the deal price
// on every date in range; a symbol with history gets it only after the
// delist date, and only where no close exists.
func (f *Fetcher) injectPrivatized(ps *PriceSet, requested []string) {
	for sym, deal := range ticker.Privatized {
		wanted := false
		for _, r := range requested {
			if r == sym {
				wanted = true
				break
			}
		}
		if !wanted {
			continue
		}
		series := ps.Series[sym]
		if len(series) == 0 {
			series = make(Series)
			for d := ps.Start; !d.After(ps.End); d = domain.AddDays(d, 1) {
				series[domain.DateKey(d)] = deal.FinalPrice
			}
			ps.Series[sym] = series
			f.logger.Info().Str("symbol", sym).Msg("privatized ticker backfilled at deal price")
			continue
		}
		for d := deal.DelistDate; !d.After(ps.End); d = domain.AddDays(d, 1) {
			series.SetDefault(domain.DateKey(d), deal.FinalPrice)
		}
	}
}

func (f *Fetcher) collectSymbols(picks []*domain.Pick, extra []string) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(sym string) {
		if sym != "" && !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}

	for _, p := range picks {
		add(p.Ticker)
	}
	add(domain.BenchmarkSymbol)
	add(domain.VolatilitySymbol)
	for _, sym := range domain.FactorSymbols {
		add(sym)
	}
	for _, p := range picks {
		add(ticker.SectorETF(ticker.Sector(p.Ticker)))
	}
	for _, sym := range extra {
		add(sym)
	}
	return symbols
}

// Enrich fills BasePrice, forward returns, benchmark returns, excess
// returns, and entry sensitivity on every pick that has a series.
func (f *Fetcher) Enrich(ps *PriceSet, picks []*domain.Pick) {
	bench := ps.Get(domain.BenchmarkSymbol)

	for _, p := range picks {
		series := ps.Get(p.Ticker)
		if series == nil {
			continue
		}

		if base, _, ok := series.Nearest(p.MeetingDate); ok {
			b := base
			p.BasePrice = &b
		}

		p.Returns = make(map[int]*float64, len(domain.AllWindows))
		p.BenchReturns = make(map[int]*float64, len(domain.AllWindows))
		p.ExcessReturns = make(map[int]*float64, len(domain.AllWindows))
		for _, w := range domain.AllWindows {
			r := series.ForwardReturn(p.MeetingDate, w)
			b := bench.ForwardReturn(p.MeetingDate, w)
			p.Returns[w] = r
			p.BenchReturns[w] = b
			if r != nil && b != nil {
				ex := *r - *b
				p.ExcessReturns[w] = &ex
			}
		}

		p.EntrySensitivity = make(map[int]*float64, len(domain.EntryOffsets))
		for _, off := range domain.EntryOffsets {
			p.EntrySensitivity[off] = series.ForwardReturn(
				domain.AddDays(p.MeetingDate, off), domain.DefaultHoldDays)
		}
	}
}
