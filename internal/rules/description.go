package rules

import (
	"fmt"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

// Similarity thresholds for the mirror match. They are empirical values
// pending product confirmation.
const (
	MirrorSimilarityThreshold = 0.95
	MinorVariationThreshold   = 0.80
	WordOverlapThreshold      = 0.80
)

const refDescription = "UCP 600 Art. 18(c)"

// DescriptionRule requires the invoice goods description to mirror the LC's.
type DescriptionRule struct{}

func (DescriptionRule) Name() string { return NameDescription }

func (r DescriptionRule) Check(in Input, l *ledger.Ledger) error {
	lcDesc, lcOK := in.LC.Text(domain.FieldDescription)
	invDesc, invOK := in.Invoice.Text(domain.FieldDescription)
	if !lcOK {
		l.Add(missingField(r.Name(), docLC, domain.FieldDescription, domain.CategoryText, in.LC.Get(domain.FieldDescription), refDescription))
	}
	if !invOK {
		l.Add(missingField(r.Name(), docInvoice, domain.FieldDescription, domain.CategoryText, in.Invoice.Get(domain.FieldDescription), refDescription))
	}
	if !lcOK || !invOK {
		return nil
	}

	c := CompareDescriptions(lcDesc, invDesc)
	if c.Equal || (c.Similarity >= MirrorSimilarityThreshold && !c.OrderChanged) {
		return nil
	}

	d := domain.Discrepancy{
		Rule:          r.Name(),
		Field:         domain.FieldDescription,
		Category:      domain.CategoryText,
		Expected:      lcDesc,
		Observed:      invDesc,
		RuleReference: refDescription,
		SuggestedFix:  fmt.Sprintf("Reproduce the LC goods description verbatim on the invoice: %q.", lcDesc),
	}

	switch {
	case c.OrderChanged:
		d.Severity = domain.SeverityMinor
		d.Explanation = fmt.Sprintf("Invoice description uses the same words as the LC in a different order (similarity %.0f%%).", c.Similarity*100)
	case c.Similarity >= MinorVariationThreshold || c.Overlap > WordOverlapThreshold:
		d.Severity = domain.SeverityMinor
		d.Explanation = fmt.Sprintf("Invoice description varies slightly from the LC (similarity %.0f%%, word overlap %.0f%%).", c.Similarity*100, c.Overlap*100)
	default:
		d.Severity = domain.SeverityCritical
		d.Explanation = fmt.Sprintf("Fatal mismatch: invoice description does not correspond to the LC (similarity %.0f%%, word overlap %.0f%%).", c.Similarity*100, c.Overlap*100)
	}
	l.Add(d)
	return nil
}
