package domain

// AllWindows lists every forward-return horizon in calendar days.
var AllWindows = []int{1, 3, 7, 14, 21, 30, 45, 60, 90, 180}

// MainWindows are the horizons the attribution analyses report.
var MainWindows = []int{7, 30, 90}

// DefaultHoldDays is the hold window used by the portfolio-level analyses
// and entry sensitivity.
const DefaultHoldDays = 30

// EntryOffsets are the base-price shifts (in calendar days after the
// meeting) probed by the entry-sensitivity computation.
var EntryOffsets = []int{0, 1, 2}

// Market reference symbols.
const (
	BenchmarkSymbol  = "SPY"
	VolatilitySymbol = "^VIX"
)

// FactorSymbols are the ETFs used to proxy the four-factor model:
// market, size, value and momentum.
var FactorSymbols = []string{"SPY", "IWM", "IWD", "IWF", "MTUM"}
