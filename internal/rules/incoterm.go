package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

const (
	refIncoterm       = "UCP 600 Art. 14(d)"
	refIncotermCharge = "UCP 600 Art. 14(d); Incoterms 2020"
)

// chargePolicy says which invoice charge lines a trade term forbids or requires.
type chargePolicy struct {
	forbid  []domain.FieldName
	require []domain.FieldName
}

var (
	sellerPaysNothing = chargePolicy{forbid: []domain.FieldName{domain.FieldFreight, domain.FieldInsurance}}
	sellerPaysFreight = chargePolicy{require: []domain.FieldName{domain.FieldFreight}}
	sellerPaysBoth    = chargePolicy{require: []domain.FieldName{domain.FieldFreight, domain.FieldInsurance}}
)

// incotermPolicies is keyed by the LC's Incoterm; each audit applies at most one entry.
var incotermPolicies = map[string]chargePolicy{
	"EXW": sellerPaysNothing,
	"FCA": sellerPaysNothing,
	"FAS": sellerPaysNothing,
	"FOB": sellerPaysNothing,
	"CFR": sellerPaysFreight,
	"CPT": sellerPaysFreight,
	"CIF": sellerPaysBoth,
	"CIP": sellerPaysBoth,
}

var chargeMentioned = regexp.MustCompile(`(?i)\b(included|inclusive|prepaid|paid)\b`)

// IncotermRule checks the trade term and the freight/insurance lines it implies.
type IncotermRule struct{}

func (IncotermRule) Name() string { return NameIncoterm }

func (r IncotermRule) Check(in Input, l *ledger.Ledger) error {
	lcTerm, lcOK := in.LC.Text(domain.FieldIncoterm)
	invTerm, invOK := in.Invoice.Text(domain.FieldIncoterm)
	if !lcOK {
		return nil
	}

	if invOK && !strings.EqualFold(strings.TrimSpace(lcTerm), strings.TrimSpace(invTerm)) {
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         domain.FieldIncoterm,
			Category:      domain.CategoryIncoterm,
			Severity:      domain.SeverityMajor,
			Expected:      lcTerm,
			Observed:      invTerm,
			RuleReference: refIncoterm,
			Explanation:   fmt.Sprintf("Invoice trade term %s conflicts with the LC term %s.", invTerm, lcTerm),
			SuggestedFix:  fmt.Sprintf("Invoice on %s terms as stipulated in the LC.", lcTerm),
		})
	}

	policy, ok := incotermPolicies[strings.ToUpper(lcTerm)]
	if !ok {
		return nil
	}
	for _, field := range policy.forbid {
		v := in.Invoice.Get(field)
		if !charged(v) {
			continue
		}
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         field,
			Category:      domain.CategoryIncoterm,
			Severity:      domain.SeverityMajor,
			Expected:      fmt.Sprintf("no %s under %s", fieldLabel(field), lcTerm),
			Observed:      v.Raw(),
			RuleReference: refIncotermCharge,
			Explanation:   fmt.Sprintf("Under %s the buyer bears this cost, yet the invoice charges %s %s.", lcTerm, fieldLabel(field), v.Raw()),
			SuggestedFix:  fmt.Sprintf("Remove the %s line from the invoice.", fieldLabel(field)),
		})
	}
	for _, field := range policy.require {
		v := in.Invoice.Get(field)
		if charged(v) || chargeMentioned.MatchString(v.Raw()) {
			continue
		}
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         field,
			Category:      domain.CategoryIncoterm,
			Severity:      domain.SeverityMajor,
			Expected:      fmt.Sprintf("%s shown under %s", fieldLabel(field), lcTerm),
			Observed:      observedOrAbsent(v),
			RuleReference: refIncotermCharge,
			Explanation:   fmt.Sprintf("Under %s the seller pays %s, but the invoice does not show it.", lcTerm, fieldLabel(field)),
			SuggestedFix:  fmt.Sprintf("Show the %s on the invoice.", fieldLabel(field)),
		})
	}
	return nil
}

// charged reports whether a charge line carries a positive amount.
func charged(v domain.FieldValue) bool {
	d, ok := v.Decimal()
	return ok && d.IsPositive()
}

func observedOrAbsent(v domain.FieldValue) string {
	if v.Raw() != "" {
		return v.Raw()
	}
	return "(absent)"
}
