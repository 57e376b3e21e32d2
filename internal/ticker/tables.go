package ticker

import "time"

// special maps meeting-format symbols and company names to canonical
// provider symbols. Checked against both the uppercased and the original
// form, so Chinese company names resolve too.
var special = map[string]string{
	"BRK.B":   "BRK-B",
	"BRK B":   "BRK-B",
	"BRKB":    "BRK-B",
	"ANTA.HK": "2020.HK",

	// Company names
	"BURBERRY":  "BRBY.L",
	"LVMH":      "MC.PA",
	"HERMÈS":    "RMS.PA",
	"HERMES":    "RMS.PA",
	"RICHEMONT": "CFR.SW",
	"KUAISHOU":  "1024.HK",
	"JT":        "2914.T",

	// Renamed or delisted
	"SQ":   "XYZ",
	"DFS":  "DFS",
	"PARA": "PSKY",
	"SKX":  "SKX",
	"FBM":  "FBM",
	"ANSS": "ANSS",
	"ATAD": "ATAT", // typo fix

	// European listings
	"EXPN":   "EXPN.L",
	"WOSG":   "WOSG.L",
	"ICBC":   "1398.HK",
	"CFR.PA": "CFR.SW", // Richemont trades in Zurich, not Paris
	"BF.B":   "BF-B",

	// A-shares that need an exchange suffix
	"600519": "600519.SS",
	"600887": "600887.SS",
	"002594": "002594.SZ",
	"000333": "000333.SZ",
	"000858": "000858.SZ",
	"000568": "000568.SZ",

	// Chinese company names
	"海尔智家": "6690.HK",
	"美的集团": "000333.SZ",
	"格力电器": "000651.SZ",
	"安踏体育": "2020.HK",
	"快手":   "1024.HK",
}

// ChineseNames maps Chinese company names that appear as note section
// headers to provider symbols. The note parser scans section titles
// against this table.
var ChineseNames = map[string]string{
	"海尔智家": "6690.HK",
	"美的集团": "000333.SZ",
	"格力电器": "000651.SZ",
	"安踏体育": "2020.HK",
	"快手":   "1024.HK",
	"茅台":   "600519.SS",
	"五粮液":  "000858.SZ",
	"泸州老窖": "000568.SZ",
	"洋河":   "002304.SZ",
	"阿里巴巴": "BABA",
	"京东":   "JD",
	"拼多多":  "PDD",
	"腾讯":   "0700.HK",
	"百度":   "BIDU",
	"比亚迪":  "002594.SZ",
	"日本烟草": "2914.T",
}

// Privatization holds the frozen deal terms for a symbol that left the
// public market. Prices on or after DelistDate are pinned to FinalPrice
// when the provider has no data.
type Privatization struct {
	FinalPrice float64
	DelistDate time.Time
}

// Privatized lists symbols bought out at a known deal price.
var Privatized = map[string]Privatization{
	"SKX": {FinalPrice: 63.0, DelistDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)},
}

// ledgerAliases maps a current provider symbol to the names the trade
// ledger used before a rename.
var ledgerAliases = map[string][]string{
	"XYZ":  {"SQ"},   // Block traded as SQ
	"PSKY": {"PARA"}, // Paramount traded as PARA before Skydance
}

// SectorMap assigns provider symbols to coarse sectors for attribution.
// Unlisted symbols fall into "Other".
var SectorMap = map[string]string{
	// Semiconductors
	"NVDA": "Semi", "AMD": "Semi", "MU": "Semi", "INTC": "Semi",
	"AVGO": "Semi", "ASML": "Semi", "TSM": "Semi", "QCOM": "Semi",
	// Technology
	"AAPL": "Tech", "MSFT": "Tech", "AMZN": "Tech", "NOW": "Tech",
	"SAP": "Tech", "DELL": "Tech", "HPQ": "Tech", "ORCL": "Tech",
	"CRM": "Tech", "ANSS": "Tech",
	// Communication / Media
	"GOOGL": "Comm", "META": "Comm", "SNAP": "Comm", "PINS": "Comm",
	"NFLX": "Comm", "DIS": "Comm", "CMCSA": "Comm", "PSKY": "Comm",
	// China Internet
	"BABA": "China", "JD": "China", "PDD": "China", "BIDU": "China",
	"TCOM": "China", "BEKE": "China", "FUTU": "China", "QFIN": "China",
	"NTES": "China", "BILI": "China", "IQ": "China", "VIPS": "China",
	"WB": "China", "YMM": "China", "DDL": "China", "BZ": "China",
	"LKNCY": "China", "KE": "China", "ZH": "China", "0700.HK": "China",
	"6690.HK": "China", "1024.HK": "China", "YUMC": "China",
	"HTHT": "China", "FINV": "China",
	// Financials
	"HOOD": "Fin", "SCHW": "Fin", "IBKR": "Fin", "JPM": "Fin",
	"BAC": "Fin", "WFC": "Fin", "AXP": "Fin", "PYPL": "Fin",
	"COIN": "Fin", "MSCI": "Fin", "MCO": "Fin", "XYZ": "Fin",
	"EFX": "Fin", "TRU": "Fin", "FICO": "Fin", "MA": "Fin",
	"V": "Fin", "DFS": "Fin",
	// Consumer Discretionary
	"TSLA": "ConsDisc", "NKE": "ConsDisc", "LULU": "ConsDisc",
	"DECK": "ConsDisc", "ONON": "ConsDisc", "CMG": "ConsDisc",
	"SBUX": "ConsDisc", "RH": "ConsDisc", "M": "ConsDisc",
	"TJX": "ConsDisc", "ROST": "ConsDisc", "VFC": "ConsDisc",
	"ABNB": "ConsDisc", "BKNG": "ConsDisc", "EXPE": "ConsDisc",
	"HLT": "ConsDisc", "UAA": "ConsDisc", "DLTR": "ConsDisc",
	"SKX": "ConsDisc",
	// Housing / Building
	"BLDR": "Housing", "FND": "Housing", "POOL": "Housing",
	"HD": "Housing", "LOW": "Housing", "IBP": "Housing",
	"WMS": "Housing", "GMS": "Housing",
	// Consumer Staples
	"PM": "Staples", "BTI": "Staples", "MO": "Staples",
	"DEO": "Staples", "STZ": "Staples", "PEP": "Staples",
	"COST": "Staples", "WMT": "Staples", "BF-B": "Staples",
	// Healthcare / Beauty
	"LLY": "Health", "NVO": "Health", "EL": "Health",
	// Luxury / European
	"MC.PA": "Luxury", "RMS.PA": "Luxury", "BRBY.L": "Luxury",
	"WOSG.L": "Luxury", "ZGN": "Luxury", "RACE": "Luxury",
	"P911.DE": "Luxury",
	// Transport / Industrial
	"CSX": "Indust", "UNP": "Indust",
}

// SectorETFs maps a sector to the ETF used as its benchmark.
var SectorETFs = map[string]string{
	"Semi": "SMH", "Tech": "XLK", "Comm": "XLC", "China": "FXI",
	"Fin": "XLF", "ConsDisc": "XLY", "Housing": "XHB",
	"Staples": "XLP", "Health": "XLV", "Luxury": "EWL",
	"Indust": "XLI", "Other": "SPY",
}

// Sector returns the sector for a provider symbol, "Other" if unmapped.
func Sector(symbol string) string {
	if s, ok := SectorMap[symbol]; ok {
		return s
	}
	return "Other"
}

// SectorETF returns the benchmark ETF for a sector, SPY if unmapped.
func SectorETF(sector string) string {
	if etf, ok := SectorETFs[sector]; ok {
		return etf
	}
	return "SPY"
}
