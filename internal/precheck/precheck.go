// Package precheck validates a Letter of Credit on its own, before any
// invoice is examined against it: mandatory fields, plausible values,
// conditions a beneficiary should notice and common misspellings.
package precheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/rules"
)

// Issue types.
const (
	TypeEmptyInput         = "EMPTY_INPUT"
	TypeMissingField       = "MISSING_FIELD"
	TypeInvalidFormat      = "INVALID_FORMAT"
	TypeDateError          = "DATE_ERROR"
	TypeDateWarning        = "DATE_WARNING"
	TypeAmountError        = "AMOUNT_ERROR"
	TypeAmountWarning      = "AMOUNT_WARNING"
	TypeDescriptionError   = "DESCRIPTION_ERROR"
	TypeDescriptionWarning = "DESCRIPTION_WARNING"
	TypeConditionWarning   = "CONDITION_WARNING"
	TypeShipmentError      = "SHIPMENT_ERROR"
	TypeTransshipmentError = "TRANSSHIPMENT_ERROR"
	TypeSpellingError      = "SPELLING_ERROR"
)

// Auto-fix types.
const (
	FixFormat       = "FORMAT_FIX"
	FixMissingField = "MISSING_FIELD_FIX"
)

const (
	minLCNumberLength    = 3
	minDescriptionLength = 5
	minProcessingDays    = 7
	dateLayout           = "02-01-2006"
)

// Issue is one problem found in the LC.
type Issue struct {
	Type       string          `json:"type"`
	Field      string          `json:"field"`
	Severity   domain.Severity `json:"severity"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion"`
}

// AutoFix is a mechanical change that would resolve an issue.
type AutoFix struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Action      string          `json:"action"`
	Priority    domain.Severity `json:"priority"`
}

type Result struct {
	Valid         bool                   `json:"valid"`
	Issues        []Issue                `json:"issues"`
	AutoFixes     []AutoFix              `json:"auto_fixes"`
	Fields        domain.ExtractedFields `json:"fields"`
	CorrectedText string                 `json:"corrected_text,omitempty"`
}

var required = []struct {
	field domain.FieldName
	label string
}{
	{domain.FieldLCNumber, "LC Number"},
	{domain.FieldBeneficiary, "Beneficiary"},
	{domain.FieldApplicant, "Applicant"},
	{domain.FieldAmount, "Amount"},
	{domain.FieldCurrency, "Currency"},
	{domain.FieldDescription, "Description of Goods"},
	{domain.FieldShipmentDate, "Latest Shipment Date"},
	{domain.FieldExpiryDate, "Expiry Date"},
}

var (
	minAmount = decimal.NewFromInt(100)

	quantityUnits = regexp.MustCompile(`(?i)\d+\s*(KGS?|UNITS?|BOXES|BAGS|TONS?|LITERS?|LITRES?|PIECES|PCS|MT|BLS|BALES|CARTONS|DOZEN)\b`)
	standardDate  = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

	// Longer phrases first; each match is removed before the next is tried.
	restrictive = []string{"restricted negotiation", "non-negotiable", "not negotiable", "restricted"}
)

// Validate checks lcText. corrector may be nil.
func Validate(lcText string, corrector *extraction.Corrector) Result {
	if strings.TrimSpace(lcText) == "" {
		return Result{
			Issues: []Issue{{
				Type:       TypeEmptyInput,
				Field:      "lc",
				Severity:   domain.SeverityCritical,
				Message:    "LC text is empty",
				Suggestion: "Paste or upload an LC document",
			}},
			AutoFixes: []AutoFix{},
		}
	}

	corrected, applied := corrector.Apply(lcText)
	c := &checker{fields: extraction.NewLCExtractor().Extract(corrected)}

	c.checkRequired()
	c.checkFormats()
	c.checkAmount()
	c.checkDates()
	c.checkDescription()
	c.checkConditions(corrected)
	for _, a := range applied {
		c.issue(TypeSpellingError, strings.ToLower(a.Original), domain.SeverityMinor,
			fmt.Sprintf("Spelling error: %q", a.Original),
			fmt.Sprintf("Change %q to %q", a.Original, a.Replacement))
	}
	c.suggestFixes()

	if c.issues == nil {
		c.issues = []Issue{}
	}
	res := Result{
		Valid:     len(c.issues) == 0,
		Issues:    c.issues,
		AutoFixes: c.fixes,
		Fields:    c.fields,
	}
	if len(applied) > 0 {
		res.CorrectedText = corrected
	}
	return res
}

type checker struct {
	fields  domain.ExtractedFields
	issues  []Issue
	fixes   []AutoFix
	missing []string
}

func (c *checker) issue(typ, field string, sev domain.Severity, msg, suggestion string) {
	c.issues = append(c.issues, Issue{Type: typ, Field: field, Severity: sev, Message: msg, Suggestion: suggestion})
}

func (c *checker) fix(typ, desc, action string, priority domain.Severity) {
	c.fixes = append(c.fixes, AutoFix{Type: typ, Description: desc, Action: action, Priority: priority})
}

func (c *checker) checkRequired() {
	for _, r := range required {
		v := c.fields.Get(r.field)
		if v.Present() || v.Unparsed() {
			continue
		}
		// The currency may be given with the amount instead of on its own line.
		if r.field == domain.FieldCurrency && c.amountCurrency() != "" {
			continue
		}
		c.missing = append(c.missing, r.label)
		c.issue(TypeMissingField, string(r.field), domain.SeverityCritical,
			r.label+" is missing",
			"Add "+r.label+" to the LC document")
	}
}

func (c *checker) checkFormats() {
	if n, ok := c.fields.Text(domain.FieldLCNumber); ok && len(n) < minLCNumberLength {
		c.issue(TypeInvalidFormat, string(domain.FieldLCNumber), domain.SeverityMajor,
			"LC Number is too short",
			fmt.Sprintf("LC Number should be at least %d characters", minLCNumberLength))
	}
	if v := c.fields.Get(domain.FieldCurrency); v.Unparsed() {
		c.issue(TypeInvalidFormat, string(domain.FieldCurrency), domain.SeverityMajor,
			fmt.Sprintf("Currency %q is not a valid ISO code", v.Raw()),
			"Use a valid 3-letter currency code (USD, EUR, GBP, etc.)")
	}
	if v := c.fields.Get(domain.FieldAmount); v.Unparsed() {
		c.issue(TypeInvalidFormat, string(domain.FieldAmount), domain.SeverityCritical,
			"Amount does not contain a valid number",
			"State the amount as USD 50,000 or USD 50000.00")
	}
	for _, f := range []domain.FieldName{domain.FieldShipmentDate, domain.FieldExpiryDate} {
		if v := c.fields.Get(f); v.Unparsed() {
			c.issue(TypeInvalidFormat, string(f), domain.SeverityMajor,
				fmt.Sprintf("Date %q could not be read", v.Raw()),
				"Write dates as DD-MM-YYYY")
		}
	}
}

func (c *checker) checkAmount() {
	amount, ok := c.fields.Decimal(domain.FieldAmount)
	if !ok {
		return
	}
	if amount.IsZero() {
		c.issue(TypeAmountError, string(domain.FieldAmount), domain.SeverityCritical,
			"Amount is zero",
			"Amount must be greater than zero")
	}
	if amount.LessThan(minAmount) {
		c.issue(TypeAmountWarning, string(domain.FieldAmount), domain.SeverityMinor,
			fmt.Sprintf("Amount is very small (%s)", amount.String()),
			"Verify the amount is correct")
	}
}

func (c *checker) checkDates() {
	ship, okShip := c.fields.Date(domain.FieldShipmentDate)
	expiry, okExp := c.fields.Date(domain.FieldExpiryDate)
	if !okShip || !okExp {
		return
	}
	if expiry.Before(ship) {
		c.issue(TypeDateError, "dates", domain.SeverityCritical,
			fmt.Sprintf("Expiry Date (%s) is before Shipment Date (%s)", expiry.Format(dateLayout), ship.Format(dateLayout)),
			"Expiry Date must be after Shipment Date")
	}
	days := int(expiry.Sub(ship).Hours() / 24)
	if days < minProcessingDays {
		c.issue(TypeDateWarning, "dates", domain.SeverityMinor,
			fmt.Sprintf("Only %d days between shipment and expiry", days),
			"Consider extending the expiry date to allow time for document processing")
	}
}

func (c *checker) checkDescription() {
	desc, ok := c.fields.Text(domain.FieldDescription)
	if !ok {
		return
	}
	if len(strings.TrimSpace(desc)) < minDescriptionLength {
		c.issue(TypeDescriptionError, string(domain.FieldDescription), domain.SeverityMinor,
			"Description is too short",
			"Provide a detailed description of the goods")
	}
	if !quantityUnits.MatchString(desc) {
		c.issue(TypeDescriptionWarning, string(domain.FieldDescription), domain.SeverityMinor,
			"Description does not include quantity units",
			"Include quantity and units (e.g. 1000 KGS)")
	}
}

func (c *checker) checkConditions(text string) {
	lower := strings.ToLower(text)
	for _, kw := range restrictive {
		if !strings.Contains(lower, kw) {
			continue
		}
		lower = strings.ReplaceAll(lower, kw, " ")
		c.issue(TypeConditionWarning, "conditions", domain.SeverityMajor,
			fmt.Sprintf("LC contains restrictive condition: %q", kw),
			"Review whether this restriction is acceptable")
	}

	if v, ok := c.fields.Text(domain.FieldPartialShipment); ok && rules.Prohibits(v) {
		c.issue(TypeShipmentError, string(domain.FieldPartialShipment), domain.SeverityMajor,
			"Partial shipment is not allowed",
			"Ensure a single full shipment is possible or negotiate partial shipments")
	}
	if v, ok := c.fields.Text(domain.FieldTransshipment); ok && rules.Prohibits(v) {
		c.issue(TypeTransshipmentError, string(domain.FieldTransshipment), domain.SeverityMajor,
			"Transshipment is not allowed",
			"Ensure direct shipment is possible or negotiate transshipment")
	}
}

func (c *checker) suggestFixes() {
	amount := c.fields.Get(domain.FieldAmount)
	if code, ok := c.fields.Text(domain.FieldCurrency); ok && amount.Present() && c.amountCurrency() == "" {
		c.fix(FixFormat, "Add currency code to amount",
			fmt.Sprintf("Change %q to %q", amount.Raw(), code+" "+amount.Raw()),
			domain.SeverityMajor)
	}

	for _, f := range []domain.FieldName{domain.FieldShipmentDate, domain.FieldExpiryDate} {
		v := c.fields.Get(f)
		d, ok := v.Date()
		if !ok || standardDate.MatchString(v.Raw()) {
			continue
		}
		c.fix(FixFormat, "Standardize date format to DD-MM-YYYY",
			fmt.Sprintf("Change %q to %q", v.Raw(), d.Format(dateLayout)),
			domain.SeverityMinor)
	}

	for _, label := range c.missing {
		c.fix(FixMissingField, "Add missing "+label,
			"Insert the "+label+" field in the LC document",
			domain.SeverityCritical)
	}
	if c.fixes == nil {
		c.fixes = []AutoFix{}
	}
}

func (c *checker) amountCurrency() string {
	_, code, _ := c.fields.Money(domain.FieldAmount)
	return code
}
