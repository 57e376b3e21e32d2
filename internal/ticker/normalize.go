// Package ticker translates symbols between the three vocabularies the
// pipeline touches: meeting notes, the trade ledger, and the price
// provider. Normalization never fails; an unrecognized symbol passes
// through unchanged and surfaces later as a null-return row.
package ticker

import (
	"regexp"
	"strings"
)

var (
	hkSuffixRe     = regexp.MustCompile(`^\d+\.HK$`)
	asiaSuffixRe   = regexp.MustCompile(`^\d+\.(SZ|SS|T)$`)
	europeSuffixRe = regexp.MustCompile(`^[A-Z]+\.(PA|L|DE|AS|MI|SW)$`)
	sixDigitRe     = regexp.MustCompile(`^\d{6}$`)
	hkBareRe       = regexp.MustCompile(`^\d{4,5}$`)
	ledgerHKDRe    = regexp.MustCompile(`^(\d+)D$`)
	ledgerBareRe   = regexp.MustCompile(`^\d{3,5}$`)
	providerHKRe   = regexp.MustCompile(`^(\d+)\.HK$`)
	providerCNRe   = regexp.MustCompile(`^(\d+)\.(SS|SZ)$`)
)

// MeetingToProvider converts a meeting-note symbol to the provider form.
func MeetingToProvider(raw string) string {
	original := strings.TrimSpace(raw)
	sym := strings.ToUpper(original)
	sym = strings.TrimPrefix(sym, "$")

	if mapped, ok := special[sym]; ok {
		return mapped
	}
	if mapped, ok := special[original]; ok {
		return mapped
	}

	// Shanghai listings use .SS at the provider
	if strings.HasSuffix(sym, ".SH") {
		return strings.TrimSuffix(sym, ".SH") + ".SS"
	}

	// Already carries an exchange suffix
	if hkSuffixRe.MatchString(sym) || asiaSuffixRe.MatchString(sym) || europeSuffixRe.MatchString(sym) {
		return sym
	}

	// Bare numeric: 6 digits is an A-share, 4-5 digits is Hong Kong
	if sixDigitRe.MatchString(sym) {
		if strings.HasPrefix(sym, "6") {
			return sym + ".SS"
		}
		return sym + ".SZ"
	}
	if hkBareRe.MatchString(sym) {
		return sym + ".HK"
	}

	return sym
}

// LedgerToProvider converts a trade-ledger symbol to the provider form.
func LedgerToProvider(raw string) string {
	sym := strings.TrimSpace(raw)

	// HK positions carried a D suffix, e.g. 690D -> 0690.HK
	if m := ledgerHKDRe.FindStringSubmatch(sym); m != nil {
		num := m[1]
		for len(num) < 4 {
			num = "0" + num
		}
		return num + ".HK"
	}

	if ledgerBareRe.MatchString(sym) {
		return sym + ".HK"
	}

	if strings.Contains(sym, ".") {
		if strings.HasSuffix(sym, ".SH") {
			return strings.TrimSuffix(sym, ".SH") + ".SS"
		}
		return sym
	}

	if sym == "BRK B" {
		return "BRK-B"
	}

	return sym
}

// ProviderToLedger returns the ledger keys a provider symbol may appear
// under, most specific first. Renamed tickers include their pre-rename
// aliases.
func ProviderToLedger(symbol string) []string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	if m := providerHKRe.FindStringSubmatch(sym); m != nil {
		num := m[1]
		bare := strings.TrimLeft(num, "0")
		return []string{bare + "D", num, bare}
	}

	if m := providerCNRe.FindStringSubmatch(sym); m != nil {
		return []string{m[1]}
	}

	if strings.HasSuffix(sym, ".T") {
		return []string{sym}
	}

	if strings.Contains(sym, "-") {
		return []string{strings.ReplaceAll(sym, "-", " "), sym}
	}

	candidates := []string{sym}
	candidates = append(candidates, ledgerAliases[sym]...)
	return candidates
}
