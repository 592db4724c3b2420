package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/currency"
	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

const (
	refAmountTolerance = "UCP 600 Art. 30"
	refDataConsistency = "UCP 600 Art. 14(d)"
	refInvoiceCurrency = "UCP 600 Art. 18(a)(iii)"
)

// MathRule checks the invoice total against the LC amount and its tolerance,
// and the invoice's own quantity x unit price arithmetic.
type MathRule struct{}

func (MathRule) Name() string { return NameMath }

func (r MathRule) Check(in Input, l *ledger.Ledger) error {
	lcAmount, lcCcy, lcOK := in.LC.Money(domain.FieldAmount)
	total, invCcy, invOK := in.Invoice.Money(domain.FieldTotalAmount)
	lcCcy = currencyOf(in.LC, lcCcy)
	invCcy = currencyOf(in.Invoice, invCcy)

	if !lcOK {
		l.Add(missingField(r.Name(), docLC, domain.FieldAmount, domain.CategoryMath, in.LC.Get(domain.FieldAmount), refAmountTolerance))
	}
	if !invOK {
		l.Add(missingField(r.Name(), docInvoice, domain.FieldTotalAmount, domain.CategoryMath, in.Invoice.Get(domain.FieldTotalAmount), refAmountTolerance))
		return nil
	}

	code := lcCcy
	if code == "" {
		code = invCcy
	}

	if lcOK {
		if lcCcy != "" && invCcy != "" && lcCcy != invCcy {
			l.Add(domain.Discrepancy{
				Rule:          r.Name(),
				Field:         domain.FieldCurrency,
				Category:      domain.CategoryMath,
				Severity:      domain.SeverityMajor,
				Expected:      lcCcy,
				Observed:      invCcy,
				RuleReference: refInvoiceCurrency,
				Explanation:   fmt.Sprintf("Invoice is made out in %s but the credit is denominated in %s; amounts cannot be compared.", invCcy, lcCcy),
				SuggestedFix:  fmt.Sprintf("Issue the invoice in %s, the currency of the credit.", lcCcy),
			})
		} else {
			r.checkTolerance(in, lcAmount, total, code, l)
		}
	}

	r.checkExtension(in, total, code, l)
	return nil
}

// checkTolerance fires when the invoice total leaves the acceptable band.
// Observed carries the boundary that was breached.
func (r MathRule) checkTolerance(in Input, lcAmount, total decimal.Decimal, code string, l *ledger.Ledger) {
	tol := ToleranceOf(in.LC)
	lower, upper := tol.Bounds(lcAmount, code)
	got := currency.Round(total, code)

	var boundary decimal.Decimal
	var explanation, fix string
	switch {
	case got.GreaterThan(upper):
		boundary = upper
		explanation = fmt.Sprintf("Invoice total %s exceeds the maximum drawable amount %s (LC amount %s, %s).",
			currency.Format(total, code), currency.Format(upper, code), currency.Format(lcAmount, code), tol)
		fix = fmt.Sprintf("Reduce the invoice total to %s or less, or obtain an amendment increasing the credit amount.", currency.Format(upper, code))
	case got.LessThan(lower):
		boundary = lower
		explanation = fmt.Sprintf("Invoice total %s is below the minimum acceptable amount %s (LC amount %s, %s).",
			currency.Format(total, code), currency.Format(lower, code), currency.Format(lcAmount, code), tol)
		fix = fmt.Sprintf("Invoice at least %s or obtain an amendment reducing the credit amount.", currency.Format(lower, code))
	default:
		return
	}

	expected := currency.Format(lower, code)
	if !lower.Equal(upper) {
		expected = fmt.Sprintf("%s to %s", currency.Format(lower, code), currency.Format(upper, code))
	}

	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         domain.FieldTotalAmount,
		Category:      domain.CategoryMath,
		Severity:      domain.SeverityCritical,
		Expected:      expected,
		Observed:      currency.Format(boundary, code),
		RuleReference: refAmountTolerance,
		Explanation:   explanation,
		SuggestedFix:  fix,
	})
}

// checkExtension compares quantity x unit price with the stated total,
// allowing one minor currency unit of rounding.
func (r MathRule) checkExtension(in Input, total decimal.Decimal, code string, l *ledger.Ledger) {
	qty, qOK := in.Invoice.Decimal(domain.FieldQuantity)
	price, pOK := in.Invoice.Decimal(domain.FieldUnitPrice)
	if !qOK || !pOK {
		return
	}

	product := qty.Mul(price)
	if product.Sub(total).Abs().LessThanOrEqual(currency.MinorUnit(code)) {
		return
	}

	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         domain.FieldTotalAmount,
		Category:      domain.CategoryMath,
		Severity:      domain.SeverityMajor,
		Expected:      currency.Format(product, code),
		Observed:      currency.Format(total, code),
		RuleReference: refDataConsistency,
		Explanation: fmt.Sprintf("Quantity %s x unit price %s = %s, but the invoice total is %s.",
			qty.String(), currency.Format(price, code), currency.Format(product, code), currency.Format(total, code)),
		SuggestedFix: "Correct the quantity, unit price or total so the invoice is arithmetically consistent.",
	})
}

// currencyOf prefers the code captured with the amount, then the document's currency field.
func currencyOf(f domain.ExtractedFields, fromAmount string) string {
	if fromAmount != "" {
		return fromAmount
	}
	code, _ := f.Text(domain.FieldCurrency)
	return code
}
