package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

// Jurisdiction is a data-driven table of invoice requirements for one
// export regime. Adding a jurisdiction needs no code change.
type Jurisdiction struct {
	Code         string        `yaml:"code" json:"code" validate:"required,alphanum,min=2,max=8"`
	Name         string        `yaml:"name" json:"name" validate:"required"`
	Requirements []Requirement `yaml:"requirements" json:"requirements" validate:"required,min=1,dive"`
	Conflicts    []Conflict    `yaml:"conflicts,omitempty" json:"conflicts,omitempty" validate:"omitempty,dive"`
}

// Requirement is one mandatory invoice field. Format, when set, is a regular
// expression the whole value must match once spaces, dots and hyphens are
// removed. Labels, when set, teach the invoice extractor where to find a
// field it does not know natively.
type Requirement struct {
	Field      domain.FieldName `yaml:"field" json:"field" validate:"required"`
	Label      string           `yaml:"label" json:"label" validate:"required"`
	Format     string           `yaml:"format,omitempty" json:"format,omitempty"`
	FormatHint string           `yaml:"format_hint,omitempty" json:"format_hint,omitempty"`
	Reference  string           `yaml:"reference" json:"reference" validate:"required"`
	Labels     []string         `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Conflict fires when Field carries a positive amount (or any text) while
// When is present, e.g. IGST charged on an export under LUT.
type Conflict struct {
	Field        domain.FieldName `yaml:"field" json:"field" validate:"required"`
	When         domain.FieldName `yaml:"when" json:"when" validate:"required"`
	Severity     domain.Severity  `yaml:"severity" json:"severity" validate:"required,oneof=MINOR MAJOR CRITICAL"`
	Reference    string           `yaml:"reference" json:"reference" validate:"required"`
	Explanation  string           `yaml:"explanation" json:"explanation" validate:"required"`
	SuggestedFix string           `yaml:"suggested_fix,omitempty" json:"suggested_fix,omitempty"`
}

type compiledRequirement struct {
	Requirement
	format *regexp.Regexp
}

type compiledJurisdiction struct {
	Jurisdiction
	requirements []compiledRequirement
}

// RegulatoryRule checks the jurisdiction requested for the audit. It is
// skipped when no jurisdiction is requested.
type RegulatoryRule struct {
	table map[string]compiledJurisdiction
}

// NewRegulatoryRule compiles the jurisdiction tables. Codes are case-insensitive.
func NewRegulatoryRule(js []Jurisdiction) (*RegulatoryRule, error) {
	r := &RegulatoryRule{table: make(map[string]compiledJurisdiction, len(js))}
	for _, j := range js {
		code := strings.ToUpper(strings.TrimSpace(j.Code))
		if code == "" {
			return nil, fmt.Errorf("jurisdiction %q: code is required", j.Name)
		}
		if _, dup := r.table[code]; dup {
			return nil, fmt.Errorf("jurisdiction %s: duplicate code", code)
		}
		cj := compiledJurisdiction{Jurisdiction: j}
		cj.Code = code
		for _, req := range j.Requirements {
			cr := compiledRequirement{Requirement: req}
			if req.Format != "" {
				re, err := regexp.Compile(`^(?:` + req.Format + `)$`)
				if err != nil {
					return nil, fmt.Errorf("jurisdiction %s field %s: %w", code, req.Field, err)
				}
				cr.format = re
			}
			cj.requirements = append(cj.requirements, cr)
		}
		r.table[code] = cj
	}
	return r, nil
}

func (*RegulatoryRule) Name() string { return NameRegulatory }

// Jurisdictions lists the configured codes, sorted.
func (r *RegulatoryRule) Jurisdictions() []string {
	codes := make([]string, 0, len(r.table))
	for c := range r.table {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Has reports whether code is configured.
func (r *RegulatoryRule) Has(code string) bool {
	_, ok := r.table[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

func (r *RegulatoryRule) Check(in Input, l *ledger.Ledger) error {
	if strings.TrimSpace(in.Jurisdiction) == "" {
		return nil
	}
	j, ok := r.table[strings.ToUpper(strings.TrimSpace(in.Jurisdiction))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJurisdiction, in.Jurisdiction)
	}

	for _, req := range j.requirements {
		r.checkRequirement(j, req, in.Invoice, l)
	}
	for _, c := range j.Conflicts {
		r.checkConflict(j, c, in.Invoice, l)
	}
	return nil
}

func (r *RegulatoryRule) checkRequirement(j compiledJurisdiction, req compiledRequirement, inv domain.ExtractedFields, l *ledger.Ledger) {
	v := inv.Get(req.Field)
	value, ok := v.Text()
	if !ok && !v.Unparsed() {
		l.Add(domain.Discrepancy{
			Rule:          r.Name(),
			Field:         req.Field,
			Category:      domain.CategoryRegulatory,
			Severity:      domain.SeverityMajor,
			Expected:      fmt.Sprintf("%s on the invoice", req.Label),
			Observed:      "(absent)",
			RuleReference: req.Reference,
			Explanation:   fmt.Sprintf("%s export invoices must state the %s; none was found.", j.Name, req.Label),
			SuggestedFix:  fmt.Sprintf("Add the exporter's %s to the invoice.", req.Label),
		})
		return
	}
	if !ok {
		value = v.Raw()
	}
	if req.format == nil || req.format.MatchString(compact(value)) {
		return
	}

	hint := req.FormatHint
	if hint == "" {
		hint = "the prescribed format"
	}
	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         req.Field,
		Category:      domain.CategoryRegulatory,
		Severity:      domain.SeverityMajor,
		Expected:      fmt.Sprintf("%s in %s", req.Label, hint),
		Observed:      value,
		RuleReference: req.Reference,
		Explanation:   fmt.Sprintf("%s %q is present but invalid: expected %s.", req.Label, value, hint),
		SuggestedFix:  fmt.Sprintf("Correct the %s; it must be %s.", req.Label, hint),
	})
}

func (r *RegulatoryRule) checkConflict(j compiledJurisdiction, c Conflict, inv domain.ExtractedFields, l *ledger.Ledger) {
	trigger := inv.Get(c.When)
	if !trigger.Present() {
		return
	}
	v := inv.Get(c.Field)
	if !levied(v) {
		return
	}
	triggerText, _ := trigger.Text()
	l.Add(domain.Discrepancy{
		Rule:          r.Name(),
		Field:         c.Field,
		Category:      domain.CategoryRegulatory,
		Severity:      c.Severity,
		Expected:      fmt.Sprintf("no %s when %s applies", c.Field, c.When),
		Observed:      fmt.Sprintf("%s %s with %q", c.Field, v.Raw(), triggerText),
		RuleReference: c.Reference,
		Explanation:   c.Explanation,
		SuggestedFix:  c.SuggestedFix,
	})
}

// levied reports whether a field carries a positive amount, or any text for
// non-numeric fields.
func levied(v domain.FieldValue) bool {
	if d, ok := v.Decimal(); ok {
		return d.IsPositive()
	}
	_, ok := v.Text()
	return ok
}

func compact(s string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", ".", "", "-", "").Replace(s))
}
