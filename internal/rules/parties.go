package rules

import (
	"fmt"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

const (
	refInvoiceIssuer = "UCP 600 Art. 18(a)(i)"
	refInvoiceBuyer  = "UCP 600 Art. 18(a)(ii)"
)

// PartiesRule requires the invoice to be issued by the beneficiary and made
// out in the name of the applicant. Names correspond when one contains the
// other after normalization, so a trailing address or city does not fire.
type PartiesRule struct{}

func (PartiesRule) Name() string { return NameParties }

func (r PartiesRule) Check(in Input, l *ledger.Ledger) error {
	r.compare(in, domain.FieldBeneficiary, domain.FieldIssuer, refInvoiceIssuer,
		"Invoice must be issued by the beneficiary.", l)
	r.compare(in, domain.FieldApplicant, domain.FieldBuyer, refInvoiceBuyer,
		"Invoice must be made out in the name of the applicant.", l)
	return nil
}

func (r PartiesRule) compare(in Input, lcField, invField domain.FieldName, ref, rule string, l *ledger.Ledger) {
	want, ok := in.LC.Text(lcField)
	if !ok {
		return
	}
	got, ok := in.Invoice.Text(invField)
	if !ok || correspond(want, got) {
		return
	}
	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         invField,
		Category:      domain.CategoryText,
		Severity:      domain.SeverityCritical,
		Expected:      want,
		Observed:      got,
		RuleReference: ref,
		Explanation:   fmt.Sprintf("%s The LC %s is %q but the invoice %s is %q.", rule, fieldLabel(lcField), want, fieldLabel(invField), got),
		SuggestedFix:  fmt.Sprintf("Show the %s exactly as named in the LC.", fieldLabel(invField)),
	})
}
