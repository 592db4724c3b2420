package domain

// Category groups discrepancies by the kind of check that produced them.
type Category string

const (
	CategoryMath       Category = "MATH"
	CategoryText       Category = "TEXT"
	CategoryDate       Category = "DATE"
	CategoryGeo        Category = "GEO"
	CategoryIncoterm   Category = "INCOTERM"
	CategoryRegulatory Category = "REGULATORY"
	CategorySystem     Category = "SYSTEM"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryMath,
	CategoryText,
	CategoryDate,
	CategoryGeo,
	CategoryIncoterm,
	CategoryRegulatory,
	CategorySystem,
}

type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists every severity from least to most severe.
var Severities = []Severity{SeverityMinor, SeverityMajor, SeverityCritical}

// Rank orders severities: MINOR < MAJOR < CRITICAL. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityMajor:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Discrepancy is one violated expectation found while auditing a document pair.
// Values are never modified after a rule emits them.
type Discrepancy struct {
	Rule          string    `json:"rule,omitempty"`
	Field         FieldName `json:"field"`
	Category      Category  `json:"category"`
	Severity      Severity  `json:"severity"`
	Expected      string    `json:"expected"`
	Observed      string    `json:"observed"`
	RuleReference string    `json:"rule_reference"`
	Explanation   string    `json:"explanation"`
	SuggestedFix  string    `json:"suggested_fix"`
}
