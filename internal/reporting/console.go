package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"meeting-pick-lab/internal/analysis"
	"meeting-pick-lab/internal/domain"
)

// RenderConsole writes the summary tables to w. The Markdown rendering
// carries the full detail; the console view is the run-at-a-glance cut.
func RenderConsole(w io.Writer, r *Report) {
	fmt.Fprintln(w, text.Bold.Sprint("MEETING PICK BACKTEST"))
	fmt.Fprintf(w, "Generated %s | meetings %d | picks %d | tickers %d | acted %d\n\n",
		r.GeneratedAt.Format("2006-01-02 15:04"), r.Meetings, r.Picks, r.Tickers, r.ActedPicks)

	consoleBuckets(w, r)
	consoleDecay(w, r)
	consoleAnalyses(w, r)
}

func newConsoleTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	return tw
}

func consoleBuckets(w io.Writer, r *Report) {
	fmt.Fprintln(w, text.Bold.Sprint("BUCKETS (30d)"))
	tw := newConsoleTable(w)
	tw.AppendHeader(table.Row{"Bucket", "N", "Mean", "Median", "Win%", "ExMean", "ExWin%"})

	for _, b := range r.Buckets {
		var row30 *BucketWindowRow
		for i := range b.Windows {
			if b.Windows[i].Window == domain.DefaultHoldDays {
				row30 = &b.Windows[i]
				break
			}
		}
		if row30 == nil {
			tw.AppendRow(table.Row{b.Bucket, b.Count, "n/a", "n/a", "n/a", "n/a", "n/a"})
			continue
		}
		tw.AppendRow(table.Row{
			b.Bucket, b.Count,
			fmtRet(row30.Mean), fmtRet(row30.Median), fmtRate(row30.WinRate),
			fmtRet(row30.ExcessMean), fmtRate(row30.ExcessWinRate),
		})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func consoleDecay(w io.Writer, r *Report) {
	fmt.Fprintln(w, text.Bold.Sprint("EXCESS DECAY (Bullish + Acted)"))
	tw := newConsoleTable(w)
	tw.AppendHeader(table.Row{"Window", "N", "Mean", "Median", "Win%"})
	for _, d := range r.Decay {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%dd", d.Window), d.N,
			fmtRet(d.Mean), fmtRet(d.Median), fmtRate(d.WinRate),
		})
	}
	tw.Render()
	fmt.Fprintln(w)
}

// consoleAnalyses prints one line per analysis: the headline number or
// the reason it was skipped.
func consoleAnalyses(w io.Writer, r *Report) {
	fmt.Fprintln(w, text.Bold.Sprint("ANALYSES"))
	tw := newConsoleTable(w)
	tw.AppendHeader(table.Row{"Analysis", "Headline"})

	tw.AppendRow(table.Row{"Rolling portfolio", headline(r.Portfolio, func(p *analysis.PortfolioResult) string {
		return fmt.Sprintf("%d baskets, excess sharpe %.2f, max dd %.1f%%", p.Baskets, p.Excess.Sharpe, p.Raw.MaxDrawdown*100)
	})})
	tw.AppendRow(table.Row{"Regimes", headline(r.Regimes, func(x *analysis.RegimeResult) string {
		return fmt.Sprintf("%d meetings, VIX median %.1f", x.Meetings, x.VIXMedian)
	})})
	tw.AppendRow(table.Row{"Naive bootstrap", headline(r.Naive, func(x *analysis.NaiveBootstrapResult) string {
		return fmt.Sprintf("mean %.2f%%, percentile %.1f", x.ActualMean*100, x.Percentile)
	})})
	tw.AppendRow(table.Row{"Block bootstrap", headline(r.Block, func(x *analysis.BlockBootstrapResult) string {
		return fmt.Sprintf("CI95 [%.2f%%, %.2f%%], width ratio %.2f", x.CI95Low*100, x.CI95High*100, x.CIWidthRatio)
	})})
	tw.AppendRow(table.Row{"Newey-West", headline(r.NeweyWest, func(x *analysis.NeweyWestResult) string {
		return fmt.Sprintf("t(NW) %.2f, significant 5%%: %v", x.NWT, x.Significant5)
	})})
	tw.AppendRow(table.Row{"Factor regression", headline(r.Factors, func(x *analysis.FactorRegressionResult) string {
		return fmt.Sprintf("ann alpha %.1f%%, R2 %.2f", x.AnnualizedAlpha*100, x.R2)
	})})
	tw.AppendRow(table.Row{"Sector attribution", headline(r.Sectors, func(x *analysis.SectorAttributionResult) string {
		return fmt.Sprintf("%d buckets, %d sector rows", len(x.Groups), len(x.Sectors))
	})})
	tw.AppendRow(table.Row{"Position weighting", headline(r.Weighting, func(x *analysis.PositionWeightedResult) string {
		return fmt.Sprintf("%d held, $%.0f exposure", x.HeldN, x.TotalValueUSD)
	})})
	tw.AppendRow(table.Row{"Concentration", headline(r.Concentration, func(x *analysis.ConcentrationResult) string {
		return fmt.Sprintf("%d scenarios, top: %v", len(x.Scenarios), x.TopTickers)
	})})
	tw.AppendRow(table.Row{"Cost sensitivity", headline(r.Costs, func(x *analysis.CostResult) string {
		return fmt.Sprintf("breakeven %.1f bp", x.BreakevenBps)
	})})
	tw.AppendRow(table.Row{"P&L reconciliation", headline(r.PnL, func(x *analysis.PnLResult) string {
		return fmt.Sprintf("matched %d/%d, corr %s", x.MatchedN, x.EligibleN, fmtF2(x.Correlation))
	})})
	tw.AppendRow(table.Row{"Pipeline audit", headline(r.Audit, func(x *analysis.AuditResult) string {
		return fmt.Sprintf("common %d, discrepancies %d", x.Common, len(x.Discrepancies))
	})})

	tw.Render()
}

func headline[T any](s Section[T], f func(*T) string) string {
	if s.Result == nil {
		return "skipped: " + s.Reason
	}
	return f(s.Result)
}
