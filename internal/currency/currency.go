package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnits maps ISO 4217 codes to the number of decimal places of the
// currency's minor unit. Codes not listed here are unknown.
var minorUnits = map[string]int32{
	"AED": 2, "AUD": 2, "BDT": 2, "BHD": 3, "BRL": 2,
	"CAD": 2, "CHF": 2, "CNY": 2, "CZK": 2, "DKK": 2,
	"EGP": 2, "EUR": 2, "GBP": 2, "HKD": 2, "IDR": 2,
	"INR": 2, "JOD": 3, "JPY": 0, "KES": 2, "KRW": 0,
	"KWD": 3, "LKR": 2, "MXN": 2, "MYR": 2, "NGN": 2,
	"NOK": 2, "NZD": 2, "OMR": 3, "PHP": 2, "PKR": 2,
	"PLN": 2, "QAR": 2, "RUB": 2, "SAR": 2, "SEK": 2,
	"SGD": 2, "THB": 2, "TRY": 2, "TWD": 2, "USD": 2,
	"VND": 0, "ZAR": 2,
}

// symbols maps currency signs seen in invoices to their ISO codes.
var symbols = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"RS.": "INR",
	"RS":  "INR",
}

const defaultPrecision int32 = 2

// Known reports whether code is a recognised ISO 4217 currency code.
func Known(code string) bool {
	_, ok := minorUnits[strings.ToUpper(code)]
	return ok
}

// FromSymbol resolves a currency sign such as "$" or "₹" to an ISO code.
func FromSymbol(sym string) (string, bool) {
	code, ok := symbols[strings.ToUpper(sym)]
	return code, ok
}

// Precision returns the number of minor-unit decimals for code, or 2 when
// the code is unknown or empty.
func Precision(code string) int32 {
	if p, ok := minorUnits[strings.ToUpper(code)]; ok {
		return p
	}
	return defaultPrecision
}

// MinorUnit returns the smallest representable amount of the currency, e.g. 0.01 for USD.
func MinorUnit(code string) decimal.Decimal {
	return decimal.New(1, -Precision(code))
}

// Round rounds d to the currency's precision.
func Round(d decimal.Decimal, code string) decimal.Decimal {
	return d.Round(Precision(code))
}

// Format renders an amount with thousands separators at the currency's
// precision, prefixed with the code when one is given: "USD 50,000.00".
func Format(d decimal.Decimal, code string) string {
	s := d.StringFixed(Precision(code))
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String() + frac
	if code == "" {
		return out
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(code), out)
}
