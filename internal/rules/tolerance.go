package rules

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/currency"
	"github.com/exportsafe/lcaudit/internal/domain"
)

// KeywordTolerancePercent is the band implied by "about", "approximately"
// and similar words (UCP 600 Art. 30(a)).
const KeywordTolerancePercent = 10

// ToleranceSource records where a tolerance came from.
type ToleranceSource string

const (
	ToleranceNone     ToleranceSource = "none"
	ToleranceExplicit ToleranceSource = "explicit"
	ToleranceKeyword  ToleranceSource = "keyword"
)

var (
	explicitPercent = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:%|PCT\b|PER\s?CENT\b)`)
	swiftPlusMinus  = regexp.MustCompile(`^\s*(\d{1,2})\s*/\s*(\d{1,2})\s*$`)
	toleranceWord   = regexp.MustCompile(`(?i)\b(about|approximately|approx|circa|abt)\b`)
)

// Tolerance is the permitted variance around the LC amount, as fractions.
type Tolerance struct {
	Plus   decimal.Decimal
	Minus  decimal.Decimal
	Source ToleranceSource
}

// ToleranceOf derives the tolerance from the LC. An explicit percentage in
// the tolerance field or the amount line wins; otherwise a tolerance keyword
// in the tolerance field, amount line or goods description implies 10%.
// MT700 field 39A notation "10/5" reads as +10% / -5%.
func ToleranceOf(lc domain.ExtractedFields) Tolerance {
	tolText, _ := lc.Text(domain.FieldTolerance)
	amountText := lc.Get(domain.FieldAmount).Raw()
	desc, _ := lc.Text(domain.FieldDescription)

	for _, s := range []string{tolText, amountText} {
		if m := swiftPlusMinus.FindStringSubmatch(s); m != nil {
			return Tolerance{Plus: percent(m[1]), Minus: percent(m[2]), Source: ToleranceExplicit}
		}
		if m := explicitPercent.FindStringSubmatch(s); m != nil {
			p := percent(m[1])
			return Tolerance{Plus: p, Minus: p, Source: ToleranceExplicit}
		}
	}

	for _, s := range []string{tolText, amountText, desc} {
		if toleranceWord.MatchString(s) {
			p := decimal.New(KeywordTolerancePercent, -2)
			return Tolerance{Plus: p, Minus: p, Source: ToleranceKeyword}
		}
	}
	return Tolerance{Source: ToleranceNone}
}

// IsZero reports whether no variance is permitted.
func (t Tolerance) IsZero() bool {
	return t.Plus.IsZero() && t.Minus.IsZero()
}

// Bounds returns the inclusive acceptable range around amount, rounded to
// the currency's precision.
func (t Tolerance) Bounds(amount decimal.Decimal, code string) (lower, upper decimal.Decimal) {
	one := decimal.NewFromInt(1)
	lower = currency.Round(amount.Mul(one.Sub(t.Minus)), code)
	upper = currency.Round(amount.Mul(one.Add(t.Plus)), code)
	return lower, upper
}

func (t Tolerance) String() string {
	if t.IsZero() {
		return "no tolerance"
	}
	hundred := decimal.NewFromInt(100)
	if t.Plus.Equal(t.Minus) {
		return fmt.Sprintf("+/-%s%%", t.Plus.Mul(hundred).String())
	}
	return fmt.Sprintf("+%s%%/-%s%%", t.Plus.Mul(hundred).String(), t.Minus.Mul(hundred).String())
}

func percent(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Div(decimal.NewFromInt(100))
}
