// Package rules holds the independent cross-document checks run during an
// audit. Each rule reads the LC and invoice fields and records what it finds
// in the ledger it is handed; rules keep no state between calls.
package rules

import (
	"fmt"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

// Input is what every rule sees for one audit.
type Input struct {
	LC           domain.ExtractedFields
	Invoice      domain.ExtractedFields
	Jurisdiction string
}

// Rule is one compliance check.
type Rule interface {
	Name() string
	Check(in Input, l *ledger.Ledger) error
}

// Rule names, used in reports and metrics.
const (
	NameMath        = "math"
	NameDescription = "description"
	NameTemporal    = "temporal"
	NameGeospatial  = "geospatial"
	NameIncoterm    = "incoterm"
	NameParties     = "parties"
	NameRegulatory  = "regulatory"
)

// Config parameterises the default rule set.
type Config struct {
	// PresentationDays is the minimum gap between shipment and LC expiry. Zero means 21.
	PresentationDays int
	Jurisdictions    []Jurisdiction
}

// Default builds the full rule set in evaluation order.
func Default(cfg Config) ([]Rule, error) {
	reg, err := NewRegulatoryRule(cfg.Jurisdictions)
	if err != nil {
		return nil, fmt.Errorf("regulatory rule: %w", err)
	}
	return []Rule{
		MathRule{},
		DescriptionRule{},
		TemporalRule{PresentationDays: cfg.PresentationDays},
		GeospatialRule{},
		IncotermRule{},
		PartiesRule{},
		reg,
	}, nil
}

// --- helpers ---

type document string

const (
	docLC      document = "LC"
	docInvoice document = "Invoice"
)

// missingField reports that a rule could not run because a field was absent
// or could not be interpreted.
func missingField(rule string, doc document, field domain.FieldName, cat domain.Category, v domain.FieldValue, ref string) domain.Discrepancy {
	d := domain.Discrepancy{
		Rule:          rule,
		Field:         field,
		Category:      cat,
		Severity:      domain.SeverityMajor,
		Expected:      fmt.Sprintf("%s %s present", doc, fieldLabel(field)),
		RuleReference: ref,
	}
	if v.Unparsed() {
		d.Observed = v.Raw()
		d.Explanation = fmt.Sprintf("%s %s %q could not be interpreted; the %s check was not performed.", doc, fieldLabel(field), v.Raw(), rule)
		d.SuggestedFix = fmt.Sprintf("Correct the %s on the %s so it can be read unambiguously.", fieldLabel(field), doc)
		return d
	}
	d.Observed = "(absent)"
	d.Explanation = fmt.Sprintf("%s %s not found; the %s check was not performed.", doc, fieldLabel(field), rule)
	d.SuggestedFix = fmt.Sprintf("State the %s on the %s.", fieldLabel(field), doc)
	return d
}

var fieldLabels = map[domain.FieldName]string{
	domain.FieldAmount:          "amount",
	domain.FieldTotalAmount:     "total amount",
	domain.FieldDescription:     "goods description",
	domain.FieldShipmentDate:    "shipment date",
	domain.FieldExpiryDate:      "expiry date",
	domain.FieldInvoiceDate:     "invoice date",
	domain.FieldIncoterm:        "Incoterm",
	domain.FieldPortOfLoading:   "port of loading",
	domain.FieldPortOfDischarge: "port of discharge",
	domain.FieldUnitPrice:       "unit price",
	domain.FieldQuantity:        "quantity",
	domain.FieldFreight:         "freight charge",
	domain.FieldInsurance:       "insurance charge",
	domain.FieldBeneficiary:     "beneficiary",
	domain.FieldApplicant:       "applicant",
	domain.FieldIssuer:          "issuer",
	domain.FieldBuyer:           "buyer",
}

func fieldLabel(f domain.FieldName) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}
