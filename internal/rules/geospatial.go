package rules

import (
	"fmt"
	"regexp"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

const (
	refPortOfLoading   = "UCP 600 Art. 20(a)(iii); MT700 Field 44E"
	refPortOfDischarge = "UCP 600 Art. 20(a)(iii); MT700 Field 44F"
	refTransshipment   = "UCP 600 Art. 20(c)"
	refPartialShipment = "UCP 600 Art. 31(a)"
)

var (
	prohibitedPhrase = regexp.MustCompile(`(?i)\b(not\s+(allowed|permitted)|prohibited|disallowed|forbidden)\b|^\s*no\.?\s*$`)
	negation         = regexp.MustCompile(`(?i)\b(no|not|nil|none|without)\b`)
)

// Prohibits reports whether an LC condition such as "Not Allowed" or
// "Prohibited" forbids what it governs.
func Prohibits(condition string) bool {
	return prohibitedPhrase.MatchString(condition)
}

// GeospatialRule checks routing: ports of loading and discharge, and the LC's
// transshipment and partial shipment conditions.
type GeospatialRule struct{}

func (GeospatialRule) Name() string { return NameGeospatial }

func (r GeospatialRule) Check(in Input, l *ledger.Ledger) error {
	r.checkPort(in, domain.FieldPortOfLoading, refPortOfLoading, l)
	r.checkPort(in, domain.FieldPortOfDischarge, refPortOfDischarge, l)

	if lcTerm, ok := in.LC.Text(domain.FieldTransshipment); ok && Prohibits(lcTerm) {
		if mention, ok := in.Invoice.Text(domain.FieldTransshipment); ok {
			l.Add(domain.Discrepancy{
				Rule:          r.Name(),
				Field:         domain.FieldTransshipment,
				Category:      domain.CategoryGeo,
				Severity:      domain.SeverityCritical,
				Expected:      "no transshipment (" + lcTerm + ")",
				Observed:      mention,
				RuleReference: refTransshipment,
				Explanation:   "The LC prohibits transshipment but the invoice refers to it.",
				SuggestedFix:  "Ship direct, or obtain an LC amendment permitting transshipment.",
			})
		}
	}

	if lcTerm, ok := in.LC.Text(domain.FieldPartialShipment); ok && Prohibits(lcTerm) {
		if mention, ok := in.Invoice.Text(domain.FieldPartialShipment); ok && !negation.MatchString(mention) {
			l.Add(domain.Discrepancy{
				Rule:          r.Name(),
				Field:         domain.FieldPartialShipment,
				Category:      domain.CategoryGeo,
				Severity:      domain.SeverityMajor,
				Expected:      "single full shipment (" + lcTerm + ")",
				Observed:      mention,
				RuleReference: refPartialShipment,
				Explanation:   "The LC prohibits partial shipments but the invoice indicates one.",
				SuggestedFix:  "Present documents for the full shipment, or obtain an amendment permitting partial shipments.",
			})
		}
	}
	return nil
}

// checkPort compares a port named in both documents. An LC naming "any port"
// accepts whatever the invoice states.
func (r GeospatialRule) checkPort(in Input, field domain.FieldName, ref string, l *ledger.Ledger) {
	lcPort, lcOK := in.LC.Text(field)
	invPort, invOK := in.Invoice.Text(field)
	if !lcOK || !invOK || containsPhrase(lcPort, "any") {
		return
	}
	if correspond(lcPort, invPort) {
		return
	}
	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         field,
		Category:      domain.CategoryGeo,
		Severity:      domain.SeverityCritical,
		Expected:      lcPort,
		Observed:      invPort,
		RuleReference: ref,
		Explanation:   fmt.Sprintf("Invoice %s %q does not match the LC %q.", fieldLabel(field), invPort, lcPort),
		SuggestedFix:  fmt.Sprintf("State the %s exactly as the LC does, or obtain an amendment.", fieldLabel(field)),
	})
}
