package domain

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

type RiskLevel string

const (
	RiskCompliant RiskLevel = "COMPLIANT"
	RiskLow       RiskLevel = "LOW_RISK"
	RiskMedium    RiskLevel = "MEDIUM_RISK"
	RiskHigh      RiskLevel = "HIGH_RISK"
	RiskCritical  RiskLevel = "CRITICAL_RISK"
)

// ReportedDiscrepancy is a Discrepancy as it appears on the wire. Severity
// carries the scoring profile's label rather than the canonical severity.
type ReportedDiscrepancy struct {
	Rule          string    `json:"rule,omitempty"`
	Field         FieldName `json:"field"`
	Category      Category  `json:"category"`
	Severity      string    `json:"severity"`
	Expected      string    `json:"expected"`
	Observed      string    `json:"observed"`
	RuleReference string    `json:"rule_reference"`
	Explanation   string    `json:"explanation"`
	SuggestedFix  string    `json:"suggested_fix"`
}

// Breakdown counts discrepancies by canonical severity and by category.
type Breakdown struct {
	Critical   int              `json:"critical"`
	Major      int              `json:"major"`
	Minor      int              `json:"minor"`
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
}

// AuditReport is the terminal artifact of one audit. It is built once and
// returned to the caller.
type AuditReport struct {
	Status         Status                `json:"status"`
	RiskScore      int                   `json:"risk_score"`
	RiskLevel      RiskLevel             `json:"risk_level"`
	Recommendation string                `json:"recommendation"`
	Profile        string                `json:"profile"`
	Discrepancies  []ReportedDiscrepancy `json:"discrepancies"`
	Breakdown      Breakdown             `json:"breakdown"`
	CorrectedLC    string                `json:"corrected_lc,omitempty"`
	Corrections    []AppliedCorrection   `json:"corrections,omitempty"`
	LCFields       *ExtractedFields      `json:"lc_fields,omitempty"`
	InvoiceFields  *ExtractedFields      `json:"invoice_fields,omitempty"`
}

// AppliedCorrection records one spelling fix made to the LC text.
type AppliedCorrection struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Count       int    `json:"count"`
}
