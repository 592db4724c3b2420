package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/currency"
	"github.com/exportsafe/lcaudit/internal/domain"
)

// Day-first layouts are tried before month-first ones; "03/04/2024" is
// 3 April. Month-first is only used when no day-first reading exists.
var (
	dayFirstLayouts = []string{
		"2-1-2006", "2/1/2006", "2.1.2006",
		"2006-1-2", "2006/1/2", "2006.1.2",
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-January-2006",
		"2 Jan, 2006", "2 January, 2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
	}
	monthFirstLayouts = []string{"1/2/2006", "1-2-2006", "1.2.2006"}

	dateToken = regexp.MustCompile(`(?i)\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{4}|\d{1,2}[\s-]+[a-z]{3,9},?[\s-]+\d{4}|[a-z]{3,9}\s+\d{1,2},?\s+\d{4}`)
	ordinal   = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)

	numberToken   = regexp.MustCompile(`\d{1,3}(?:[ \x{00a0}'\x{2019}]\d{3})+(?:[.,]\d+)?|\d[\d,.]*\d|\d`)
	spaceGrouped  = regexp.MustCompile(`^\d{1,3}(?:[ \x{00a0}'\x{2019}]\d{3})+(?:[.,]\d+)?$`)
	euroNumber    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d+$|^\d{1,3}(\.\d{3}){2,}$`)
	percentSuffix = regexp.MustCompile(`(?i)^(?:%|pct\b|per\s?cent\b)`)
	letterRun     = regexp.MustCompile(`[A-Za-z]+`)
	termToken     = regexp.MustCompile(`[A-Za-z&]+`)

	groupSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "'", "", "\u2019", "")
)

var incotermAliases = map[string]string{
	"EXW": "EXW", "FCA": "FCA", "FAS": "FAS", "FOB": "FOB",
	"CFR": "CFR", "CNF": "CFR", "C&F": "CFR",
	"CIF": "CIF", "CPT": "CPT", "CIP": "CIP",
	"DAP": "DAP", "DPU": "DPU", "DAT": "DAT", "DDP": "DDP", "DDU": "DDU",
}

var incotermNames = []struct {
	phrase string
	code   string
}{
	{"ex works", "EXW"},
	{"free carrier", "FCA"},
	{"free alongside ship", "FAS"},
	{"free on board", "FOB"},
	{"cost and freight", "CFR"},
	{"cost, insurance and freight", "CIF"},
	{"cost insurance and freight", "CIF"},
	{"carriage and insurance paid", "CIP"},
	{"carriage paid to", "CPT"},
	{"delivered at place unloaded", "DPU"},
	{"delivered at place", "DAP"},
	{"delivered duty paid", "DDP"},
}

func parseValue(name domain.FieldName, kind domain.ValueKind, raw string) domain.FieldValue {
	switch kind {
	case domain.KindDate:
		if t, ok := ParseDate(raw); ok {
			return domain.DateValue(raw, t)
		}
	case domain.KindMoney:
		if d, ccy, ok := ParseMoney(raw); ok {
			return domain.MoneyValue(raw, d, ccy)
		}
	case domain.KindDecimal:
		if d, ok := ParseDecimal(raw); ok {
			return domain.DecimalValue(raw, d)
		}
	default:
		switch name {
		case domain.FieldIncoterm:
			return domain.TextValue(raw, NormalizeIncoterm(raw))
		case domain.FieldCurrency:
			if code, ok := findCurrency(raw); ok {
				return domain.TextValue(raw, code)
			}
		default:
			return domain.TextValue(raw, raw)
		}
	}
	return domain.Unparsable(kind, raw)
}

// ParseDate reads the first date in s. Unparsable or impossible dates
// (31-02-2024) return false.
func ParseDate(s string) (time.Time, bool) {
	s = ordinal.ReplaceAllString(strings.TrimSpace(s), "$1")
	candidates := []string{s}
	candidates = append(candidates, dateToken.FindAllString(s, -1)...)

	for _, c := range candidates {
		c = strings.Join(strings.Fields(c), " ")
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t, true
			}
		}
		for _, layout := range monthFirstLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseMoney reads an amount with an optional ISO code or currency sign:
// "USD 50,000.00", "50.000,00 EUR", "50 000 USD", "$1,200". Percentages
// are skipped.
func ParseMoney(s string) (decimal.Decimal, string, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return decimal.Zero, "", false
	}
	code, _ := findCurrency(s)
	return d, code, true
}

// ParseDecimal reads the first number in s that is not a percentage,
// discarding thousands separators.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	for _, loc := range numberToken.FindAllStringIndex(s, -1) {
		rest := strings.TrimLeft(s[loc[1]:], " ")
		if percentSuffix.MatchString(rest) {
			continue
		}
		return parseNumber(s[loc[0]:loc[1]])
	}
	return decimal.Zero, false
}

// NormalizeIncoterm maps "FOB Nhava Sheva", "fob" or "Free On Board" to the
// three-letter code. Text without a recognisable term is returned upper-cased.
func NormalizeIncoterm(s string) string {
	for _, tok := range termToken.FindAllString(s, -1) {
		if code, ok := incotermAliases[strings.ToUpper(tok)]; ok {
			return code
		}
	}
	lower := strings.ToLower(s)
	for _, n := range incotermNames {
		if strings.Contains(lower, n.phrase) {
			return n.code
		}
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// --- helpers ---

func parseNumber(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimRight(tok, ".,")
	switch {
	case spaceGrouped.MatchString(tok):
		// "50 000,00" and "1'234.50": the groups say which mark is decimal.
		tok = strings.Replace(groupSeparators.Replace(tok), ",", ".", 1)
	case euroNumber.MatchString(tok):
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.ReplaceAll(tok, ",", ".")
	default:
		tok = strings.ReplaceAll(tok, ",", "")
	}
	if strings.Count(tok, ".") > 1 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func findCurrency(s string) (string, bool) {
	for _, run := range letterRun.FindAllString(s, -1) {
		if len(run) == 3 && currency.Known(run) {
			return strings.ToUpper(run), true
		}
	}
	for _, sym := range []string{"US$", "Rs.", "$", "€", "£", "¥", "₹"} {
		if strings.Contains(s, sym) {
			code, _ := currency.FromSymbol(sym)
			return code, true
		}
	}
	return "", false
}
