package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"meeting-pick-lab/internal/analysis"
	"meeting-pick-lab/internal/domain"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Meeting Pick Backtest\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Meetings: %d | Picks: %d | Tickers: %d | Acted: %d\n\n",
		r.Meetings, r.Picks, r.Tickers, r.ActedPicks))
	if !r.FirstDate.IsZero() {
		sb.WriteString(fmt.Sprintf("Date range: %s to %s\n\n",
			domain.DateKey(r.FirstDate), domain.DateKey(r.LastDate)))
	}
	sb.WriteString(fmt.Sprintf("Bootstrap seed: %d\n\n", r.Seed))

	writeBuckets(&sb, r.Buckets)
	writeDecay(&sb, r.Decay)
	writeHeldVsTraded(&sb, r.HeldVsTraded)
	writePortfolio(&sb, r.Portfolio)
	writeRegimes(&sb, r.Regimes)
	writeNaive(&sb, r.Naive)
	writeBlock(&sb, r.Block)
	writeNeweyWest(&sb, r.NeweyWest)
	writeFactors(&sb, r.Factors)
	writeSectors(&sb, r.Sectors)
	writeWeighting(&sb, r.Weighting)
	writeConcentration(&sb, r.Concentration)
	writeCosts(&sb, r.Costs)
	writePnL(&sb, r.PnL)
	writeAudit(&sb, r.Audit)
	writeDetails(&sb, r.Details)

	return sb.String()
}

// writeSkipped renders the reason a section could not be computed.
func writeSkipped(sb *strings.Builder, reason string) {
	sb.WriteString(fmt.Sprintf("Not computed: %s\n\n", reason))
}

func writeBuckets(sb *strings.Builder, buckets []BucketSection) {
	sb.WriteString("## Bucket Summary\n\n")
	for _, b := range buckets {
		sb.WriteString(fmt.Sprintf("### %s (n=%d)\n\n", b.Bucket, b.Count))
		if b.Count == 0 {
			sb.WriteString("No picks in this bucket.\n\n")
			continue
		}

		sb.WriteString("| Window | N | Mean | Median | Win% | ExN | ExMean | ExMedian | ExWin% |\n")
		sb.WriteString("|--------|---|------|--------|------|-----|--------|----------|--------|\n")
		for _, w := range b.Windows {
			sb.WriteString(fmt.Sprintf("| %dd | %d | %s | %s | %s | %d | %s | %s | %s |\n",
				w.Window, w.N, fmtRet(w.Mean), fmtRet(w.Median), fmtRate(w.WinRate),
				w.ExcessN, fmtRet(w.ExcessMean), fmtRet(w.ExcessMedian), fmtRate(w.ExcessWinRate)))
		}
		sb.WriteString("\n")

		sb.WriteString("| Entry Offset | N | Mean | Median |\n")
		sb.WriteString("|--------------|---|------|--------|\n")
		for _, e := range b.Entry {
			sb.WriteString(fmt.Sprintf("| +%dd | %d | %s | %s |\n",
				e.Offset, e.N, fmtRet(e.Mean), fmtRet(e.Median)))
		}
		sb.WriteString("\n")
	}
}

func writeDecay(sb *strings.Builder, rows []DecayRow) {
	sb.WriteString("## Excess Decay (Bullish + Acted)\n\n")
	sb.WriteString("| Window | N | Mean | Median | Win% |\n")
	sb.WriteString("|--------|---|------|--------|------|\n")
	for _, d := range rows {
		sb.WriteString(fmt.Sprintf("| %dd | %d | %s | %s | %s |\n",
			d.Window, d.N, fmtRet(d.Mean), fmtRet(d.Median), fmtRate(d.WinRate)))
	}
	sb.WriteString("\n")
}

func writeHeldVsTraded(sb *strings.Builder, rows []ActedReasonRow) {
	sb.WriteString("## Held vs Traded (30d excess)\n\n")
	sb.WriteString("| Reason | N | Mean | Win% |\n")
	sb.WriteString("|--------|---|------|------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			row.Reason, row.N, fmtRet(row.Mean), fmtRate(row.WinRate)))
	}
	sb.WriteString("\n")
}

func writePortfolio(sb *strings.Builder, s Section[analysis.PortfolioResult]) {
	sb.WriteString("## Rolling Portfolio\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	p := s.Result

	sb.WriteString(fmt.Sprintf("Baskets: %d (%.1f picks avg) over %.2f years (%.1f baskets/year), %dd hold\n\n",
		p.Baskets, p.AvgPicksPerBasket, p.Years, p.BasketsPerYear, p.HoldDays))
	sb.WriteString("| Metric | Raw | Excess |\n")
	sb.WriteString("|--------|-----|--------|\n")
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f%% | %.2f%% |\n", p.Raw.TotalReturn*100, p.Excess.TotalReturn*100))
	sb.WriteString(fmt.Sprintf("| Annualized Return | %.2f%% | %.2f%% |\n", p.Raw.AnnualizedReturn*100, p.Excess.AnnualizedReturn*100))
	sb.WriteString(fmt.Sprintf("| Annualized Vol | %.2f%% | %.2f%% |\n", p.Raw.AnnualizedVol*100, p.Excess.AnnualizedVol*100))
	sb.WriteString(fmt.Sprintf("| Sharpe | %.2f | %.2f |\n", p.Raw.Sharpe, p.Excess.Sharpe))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% | %.2f%% |\n", p.Raw.MaxDrawdown*100, p.Excess.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("| Skewness | %.2f | %.2f |\n", p.Raw.Skewness, p.Excess.Skewness))
	sb.WriteString(fmt.Sprintf("| Excess Kurtosis | %.2f | %.2f |\n", p.Raw.Kurtosis, p.Excess.Kurtosis))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.1f%% | %.1f%% |\n", p.Raw.WinRate*100, p.Excess.WinRate*100))
	sb.WriteString("\n")
}

func writeRegimes(sb *strings.Builder, s Section[analysis.RegimeResult]) {
	sb.WriteString("## Market Regimes\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}

	sb.WriteString(fmt.Sprintf("Meetings classified: %d | VIX median: %.2f\n\n", s.Result.Meetings, s.Result.VIXMedian))
	sb.WriteString("| Regime | Picks | Bull N | Bull ExMean | Bull Win% | Bear N | Bear ExMean |\n")
	sb.WriteString("|--------|-------|--------|-------------|-----------|--------|-------------|\n")
	for _, reg := range s.Result.Regimes {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %s | %d | %s |\n",
			reg.Name, reg.Total, reg.BullN, fmtRet(reg.BullExcessMean), fmtRate(reg.BullWinRate),
			reg.BearN, fmtRet(reg.BearExcessMean)))
	}
	sb.WriteString("\n")
}

func writeNaive(sb *strings.Builder, s Section[analysis.NaiveBootstrapResult]) {
	sb.WriteString("## Naive Bootstrap\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	n := s.Result

	sb.WriteString(fmt.Sprintf("Acted picks: %d | mean excess %.2f%% | percentile %.1f (share of random draws beaten)\n\n",
		n.N, n.ActualMean*100, n.Percentile))
	if n.BearishMean != nil {
		sb.WriteString(fmt.Sprintf("Bearish discussed: %d | mean excess %.2f%% | upper-tail percentile %.1f\n\n",
			n.BearishN, *n.BearishMean*100, *n.BearishPercentile))
	} else {
		sb.WriteString("Bearish discussed: too few picks for the mirrored test.\n\n")
	}
	if n.TrainMean != nil {
		sb.WriteString(fmt.Sprintf("Chronological split: train %d (mean %.2f%%) / test %d (mean %.2f%%)\n\n",
			n.TrainN, *n.TrainMean*100, n.TestN, *n.TestMean*100))
	} else {
		sb.WriteString("Chronological split: sample too small.\n\n")
	}
}

func writeBlock(sb *strings.Builder, s Section[analysis.BlockBootstrapResult]) {
	sb.WriteString("## Block Bootstrap (meeting resampling)\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	b := s.Result

	sb.WriteString(fmt.Sprintf("Meetings: %d | Observations: %d | mean excess %.2f%%\n\n",
		b.Meetings, b.Observations, b.ActualMean*100))
	sb.WriteString("| Interval | Low | High | Zero inside |\n")
	sb.WriteString("|----------|-----|------|-------------|\n")
	sb.WriteString(fmt.Sprintf("| 95%% | %.2f%% | %.2f%% | %v |\n", b.CI95Low*100, b.CI95High*100, b.ZeroInCI95))
	sb.WriteString(fmt.Sprintf("| 90%% | %.2f%% | %.2f%% | %v |\n", b.CI90Low*100, b.CI90High*100, b.ZeroInCI90))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Block SE %.4f vs naive SE %.4f | naive CI95 [%.2f%%, %.2f%%] | CI width ratio %.2f\n\n",
		b.BlockSE, b.NaiveSE, b.NaiveCI95Low*100, b.NaiveCI95High*100, b.CIWidthRatio))
	sb.WriteString(fmt.Sprintf("Share of block-resampled means below zero: %.1f%%\n\n", b.BlockPercentile))
}

func writeNeweyWest(sb *strings.Builder, s Section[analysis.NeweyWestResult]) {
	sb.WriteString("## Newey-West Standard Errors\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	nw := s.Result

	sb.WriteString(fmt.Sprintf("Per-meeting series: %d meetings | lag truncation %d | mean %.2f%%\n\n",
		nw.N, nw.Lags, nw.Mean*100))
	sb.WriteString("| Estimator | SE | t |\n")
	sb.WriteString("|-----------|----|----|\n")
	sb.WriteString(fmt.Sprintf("| OLS | %.4f | %.2f |\n", nw.OLSSE, nw.OLST))
	sb.WriteString(fmt.Sprintf("| Newey-West | %.4f | %.2f |\n", nw.NWSE, nw.NWT))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Significant at 5%%: %v | at 10%%: %v\n\n", nw.Significant5, nw.Significant10))
	if len(nw.Autocorrelations) > 0 {
		parts := make([]string, len(nw.Autocorrelations))
		for i, ac := range nw.Autocorrelations {
			parts[i] = fmt.Sprintf("lag%d %.2f", i+1, ac)
		}
		sb.WriteString(fmt.Sprintf("Autocorrelations: %s\n\n", strings.Join(parts, ", ")))
	}
}

func writeFactors(sb *strings.Builder, s Section[analysis.FactorRegressionResult]) {
	sb.WriteString("## Factor Regression (Carhart proxies)\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	f := s.Result

	sb.WriteString(fmt.Sprintf("Joint observations: %d | R2 %.3f | adj R2 %.3f | residual std %.4f\n\n",
		f.N, f.R2, f.AdjR2, f.ResidualStd))
	sb.WriteString("| Factor | Beta | SE | t | Significant |\n")
	sb.WriteString("|--------|------|----|----|-------------|\n")
	for _, c := range f.Coefs {
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.2f | %v |\n",
			c.Name, c.Beta, c.SE, c.T, c.Significant))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Annualized alpha: %.2f%%\n\n", f.AnnualizedAlpha*100))
}

func writeSectors(sb *strings.Builder, s Section[analysis.SectorAttributionResult]) {
	sb.WriteString("## Sector Attribution (30d)\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}

	sb.WriteString("| Bucket | N | vs SPY | vs Sector ETF |\n")
	sb.WriteString("|--------|---|--------|---------------|\n")
	for _, g := range s.Result.Groups {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f%% | %.2f%% |\n",
			g.Bucket, g.N, g.BenchExcessMean*100, g.SectorExcessMean*100))
	}
	sb.WriteString("\n")

	if len(s.Result.Sectors) > 0 {
		sb.WriteString("| Sector | ETF | N | Raw | vs SPY | vs Sector ETF |\n")
		sb.WriteString("|--------|-----|---|-----|--------|---------------|\n")
		for _, row := range s.Result.Sectors {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f%% | %.2f%% | %.2f%% |\n",
				row.Sector, row.ETF, row.N, row.RawMean*100,
				row.BenchExcessMean*100, row.SectorExcessMean*100))
		}
		sb.WriteString("\n")
	}
}

func writeWeighting(sb *strings.Builder, s Section[analysis.PositionWeightedResult]) {
	sb.WriteString("## Position Weighting (held picks)\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	p := s.Result

	sb.WriteString(fmt.Sprintf("Held picks: %d | total exposure: $%.0f\n\n", p.HeldN, p.TotalValueUSD))
	sb.WriteString("| Window | N | Weighted | Equal | ExN | WeightedEx | EqualEx |\n")
	sb.WriteString("|--------|---|----------|-------|-----|------------|--------|\n")
	for _, w := range p.Windows {
		sb.WriteString(fmt.Sprintf("| %dd | %d | %s | %s | %d | %s | %s |\n",
			w.Window, w.N, fmtRet(w.Weighted), fmtRet(w.Equal),
			w.ExcessN, fmtRet(w.WeightedExcess), fmtRet(w.EqualExcess)))
	}
	sb.WriteString("\n")

	if len(p.Top) > 0 {
		sb.WriteString("| Ticker | Meeting | Shares | Value | Weight | Ret30 | Ex30 |\n")
		sb.WriteString("|--------|---------|--------|-------|--------|-------|------|\n")
		for _, top := range p.Top {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | $%.0f | %.1f%% | %s | %s |\n",
				top.Ticker, domain.DateKey(top.MeetingDate), top.Shares, top.ValueUSD,
				top.Weight*100, fmtRet(top.Return30), fmtRet(top.Excess30)))
		}
		sb.WriteString("\n")
	}
}

func writeConcentration(sb *strings.Builder, s Section[analysis.ConcentrationResult]) {
	sb.WriteString("## Concentration Stress\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}

	sb.WriteString(fmt.Sprintf("Top tickers by 30d excess: %s\n\n", strings.Join(s.Result.TopTickers, ", ")))
	sb.WriteString("| Scenario | N30 | ExMean30 | Win%30 | ExMean90 | Bootstrap pct | Sharpe | ExSharpe |\n")
	sb.WriteString("|----------|-----|----------|--------|----------|---------------|--------|----------|\n")
	for _, sc := range s.Result.Scenarios {
		w30, w90 := sc.Windows[30], sc.Windows[90]
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			sc.Name, w30.ActedN, fmtRet(w30.ActedExcessMean), fmtRate(w30.ActedWinRate),
			fmtRet(w90.ActedExcessMean), fmtF1(sc.BootstrapPercentile),
			fmtF2(sc.Sharpe), fmtF2(sc.ExcessSharpe)))
	}
	sb.WriteString("\n")
}

func writeCosts(sb *strings.Builder, s Section[analysis.CostResult]) {
	sb.WriteString("## Cost Sensitivity\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	c := s.Result

	sb.WriteString(fmt.Sprintf("Picks: %d | baseline mean excess %.2f%%\n\n", c.N, c.BaselineMean*100))
	sb.WriteString("| Scenario | Mean | Win% | Sharpe | Reduction |\n")
	sb.WriteString("|----------|------|------|--------|-----------|\n")
	for _, sc := range c.Scenarios {
		sb.WriteString(fmt.Sprintf("| %s | %.2f%% | %.1f%% | %.2f | %.2f%% |\n",
			sc.Name, sc.Mean*100, sc.WinRate*100, sc.Sharpe, sc.ExcessReduction*100))
	}
	sb.WriteString("\n")

	if len(c.TieredDistribution) > 0 {
		var tiers []int
		for bps := range c.TieredDistribution {
			tiers = append(tiers, bps)
		}
		sort.Ints(tiers)
		parts := make([]string, len(tiers))
		for i, bps := range tiers {
			parts[i] = fmt.Sprintf("%dbp x%d", bps, c.TieredDistribution[bps])
		}
		sb.WriteString(fmt.Sprintf("Tiered cost distribution: %s\n\n", strings.Join(parts, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Breakeven flat cost: %.1f bp\n\n", c.BreakevenBps))
}

func writePnL(sb *strings.Builder, s Section[analysis.PnLResult]) {
	sb.WriteString("## P&L Reconciliation\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	p := s.Result

	sb.WriteString(fmt.Sprintf("Eligible: %d | matched: %d | unmatched: %d\n\n",
		p.EligibleN, p.MatchedN, p.UnmatchedN))
	sb.WriteString(fmt.Sprintf("Mean diff: %s | median diff: %s | mean slippage: %s | mean commission: %s bp | correlation: %s\n\n",
		fmtRet(p.MeanDiff), fmtRet(p.MedianDiff), fmtRet(p.MeanSlippagePct),
		fmtF1(p.MeanCommissionBps), fmtF2(p.Correlation)))

	if len(p.Matched) > 0 {
		sb.WriteString("| Ticker | Meeting | Backtest | Actual | Diff | AvgBuy | AvgSell | Slippage | Comm bp |\n")
		sb.WriteString("|--------|---------|----------|--------|------|--------|---------|----------|--------|\n")
		for _, m := range p.Matched {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f%% | %.2f%% | %.2f%% | %.2f | %.2f | %s | %.1f |\n",
				m.Ticker, domain.DateKey(m.MeetingDate), m.BacktestReturn*100, m.ActualReturn*100,
				m.Diff*100, m.AvgBuy, m.AvgSell, fmtRet(m.SlippagePct), m.CommissionBps))
		}
		sb.WriteString("\n")
	}
	if len(p.Unmatched) > 0 {
		sb.WriteString("Unmatched picks:\n\n")
		for _, u := range p.Unmatched {
			sb.WriteString(fmt.Sprintf("- %s %s: %s (%d fills)\n",
				u.Ticker, domain.DateKey(u.MeetingDate), u.Reason, u.FillCount))
		}
		sb.WriteString("\n")
	}
}

func writeAudit(sb *strings.Builder, s Section[analysis.AuditResult]) {
	sb.WriteString("## Pipeline Audit (90d excess cross-check)\n\n")
	if s.Result == nil {
		writeSkipped(sb, s.Reason)
		return
	}
	a := s.Result

	sb.WriteString(fmt.Sprintf("Decay pool: %d | sim pool: %d | common: %d | only decay: %d | only sim: %d\n\n",
		a.DecayPoolN, a.SimPoolN, a.Common, a.OnlyInDecay, a.OnlyInSim))
	if len(a.Discrepancies) == 0 {
		sb.WriteString("No discrepancies above tolerance.\n\n")
		return
	}

	sb.WriteString("| Ticker | Meeting | Decay | Sim | Diff |\n")
	sb.WriteString("|--------|---------|-------|-----|------|\n")
	for _, d := range a.Discrepancies {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f%% | %.2f%% | %.2f%% |\n",
			d.Ticker, domain.DateKey(d.MeetingDate), d.DecayExcess*100, d.SimExcess*100, d.Diff*100))
	}
	sb.WriteString("\n")
}

func writeDetails(sb *strings.Builder, rows []PickDetailRow) {
	sb.WriteString("## Pick Details\n\n")
	if len(rows) == 0 {
		sb.WriteString("No picks.\n\n")
		return
	}

	sb.WriteString("| Meeting | Ticker | Sentiment | Acted | Sector | Base | Ret30 | Ex30 | Ret90 | Ex90 |\n")
	sb.WriteString("|---------|--------|-----------|-------|--------|------|-------|------|-------|------|\n")
	for _, d := range rows {
		acted := ""
		if d.ActedOn {
			acted = d.ActedReason
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			domain.DateKey(d.MeetingDate), d.Ticker, d.Sentiment, acted, d.Sector,
			fmtF2(d.BasePrice), fmtRet(d.Return30), fmtRet(d.Excess30),
			fmtRet(d.Return90), fmtRet(d.Excess90)))
	}
	sb.WriteString("\n")
}

// fmtRet formats a fractional return as a percentage, "n/a" when nil.
func fmtRet(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// fmtRate formats a 0..1 rate as a percentage, "n/a" when nil.
func fmtRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func fmtF1(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func fmtF2(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
