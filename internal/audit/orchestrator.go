// Package audit runs one LC-versus-invoice examination end to end: correct
// and extract both documents, evaluate every rule into a fresh ledger, score
// the ledger and assemble the report.
//
// An Orchestrator holds only immutable, compiled configuration. Every call to
// Audit owns its ledger, so one Orchestrator may serve any number of
// concurrent callers. Audit always returns a report; faults inside a rule
// and unusable input are reported as SYSTEM discrepancies.
package audit

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/ledger"
	"github.com/exportsafe/lcaudit/internal/rules"
	"github.com/exportsafe/lcaudit/internal/scoring"
)

// Config is the static configuration compiled into an Orchestrator.
type Config struct {
	Rules rules.Config
	// Extra rules run after the built-in set.
	Extra       []rules.Rule
	Corrections []extraction.Correction
	// OnTransition, when set, is called synchronously on every state change.
	OnTransition func(from, to State)
}

// Options vary per audit.
type Options struct {
	// Profile defaults to scoring.Forensic.
	Profile      scoring.Profile
	Jurisdiction string
	// IncludeFields attaches the extracted fields to the report.
	IncludeFields bool
}

type Orchestrator struct {
	corrector  *extraction.Corrector
	lc         *extraction.Extractor
	invoice    *extraction.Extractor
	rules      []rules.Rule
	regulatory *rules.RegulatoryRule
	hook       func(from, to State)
}

// New compiles cfg. It fails only on invalid configuration: a bad correction
// pattern, a malformed jurisdiction table or an extra extractor label.
func New(cfg Config) (*Orchestrator, error) {
	corrector, err := extraction.NewCorrector(cfg.Corrections)
	if err != nil {
		return nil, fmt.Errorf("corrections: %w", err)
	}
	set, err := rules.Default(cfg.Rules)
	if err != nil {
		return nil, err
	}
	invoice, err := extraction.NewInvoiceExtractor(jurisdictionSpecs(cfg.Rules.Jurisdictions)...)
	if err != nil {
		return nil, fmt.Errorf("invoice extractor: %w", err)
	}

	o := &Orchestrator{
		corrector: corrector,
		lc:        extraction.NewLCExtractor(),
		invoice:   invoice,
		rules:     append(set, cfg.Extra...),
		hook:      cfg.OnTransition,
	}
	for _, r := range set {
		if reg, ok := r.(*rules.RegulatoryRule); ok {
			o.regulatory = reg
		}
	}
	return o, nil
}

// Jurisdictions lists the jurisdiction codes the regulatory rule knows.
func (o *Orchestrator) Jurisdictions() []string {
	if o.regulatory == nil {
		return nil
	}
	return o.regulatory.Jurisdictions()
}

// HasJurisdiction reports whether code can be passed in Options.
func (o *Orchestrator) HasJurisdiction(code string) bool {
	return o.regulatory != nil && o.regulatory.Has(code)
}

// Rules lists the rule names in evaluation order.
func (o *Orchestrator) Rules() []string {
	names := make([]string, len(o.rules))
	for i, r := range o.rules {
		names[i] = r.Name()
	}
	return names
}

// Audit examines invoiceText against lcText.
func (o *Orchestrator) Audit(lcText, invoiceText string, opts Options) domain.AuditReport {
	m := newMachine(o.hook)
	profile := opts.Profile
	if profile.IsZero() {
		profile = scoring.Forensic
	}

	if !isText(lcText) && !isText(invoiceText) {
		m.advance(StateFailed)
		return fatalReport(profile)
	}

	corrected, applied := o.corrector.Apply(lcText)
	lc := o.lc.Extract(corrected)
	invoice := o.invoice.Extract(invoiceText)
	m.advance(StateExtracted)

	l := ledger.New()
	in := rules.Input{LC: lc, Invoice: invoice, Jurisdiction: opts.Jurisdiction}
	for _, r := range o.rules {
		evaluate(r, in, l)
	}
	m.advance(StateEvaluated)

	result := scoring.Evaluate(profile, l.All())
	m.advance(StateScored)

	report := newReport(profile, result, l)
	if len(applied) > 0 {
		report.CorrectedLC = corrected
		report.Corrections = applied
	}
	if opts.IncludeFields {
		report.LCFields = &lc
		report.InvoiceFields = &invoice
	}
	m.advance(StateReported)
	return report
}

// evaluate runs one rule behind a fault barrier. A rule that errors or
// panics contributes a single SYSTEM discrepancy and nothing else.
func evaluate(r rules.Rule, in rules.Input, l *ledger.Ledger) {
	scratch := ledger.New()
	var fault error
	func() {
		defer func() {
			if p := recover(); p != nil {
				fault = fmt.Errorf("panic: %v", p)
			}
		}()
		fault = r.Check(in, scratch)
	}()

	if fault != nil {
		l.Add(ruleFault(r.Name(), fault))
		return
	}
	l.Add(scratch.All()...)
}

func ruleFault(name string, err error) domain.Discrepancy {
	return domain.Discrepancy{
		Rule:          name,
		Field:         domain.FieldEngine,
		Category:      domain.CategorySystem,
		Severity:      domain.SeverityCritical,
		Expected:      fmt.Sprintf("%s rule evaluated", name),
		Observed:      err.Error(),
		RuleReference: "N/A",
		Explanation:   fmt.Sprintf("The %s rule failed and its checks were not performed: %v.", name, err),
		SuggestedFix:  "Examine these documents manually for this rule.",
	}
}

func fatalReport(profile scoring.Profile) domain.AuditReport {
	l := ledger.New()
	l.Add(domain.Discrepancy{
		Field:         domain.FieldDocuments,
		Category:      domain.CategorySystem,
		Severity:      domain.SeverityCritical,
		Expected:      "LC and invoice text",
		Observed:      "no readable text in either document",
		RuleReference: "N/A",
		Explanation:   "Neither document contains readable text, so no examination was possible.",
		SuggestedFix:  "Provide the LC and invoice as text.",
	})
	result := scoring.Result{
		Score:          scoring.MaxScore,
		Level:          scoring.Level(scoring.MaxScore),
		Status:         domain.StatusFail,
		Recommendation: scoring.Recommendation(scoring.MaxScore, true),
	}
	return newReport(profile, result, l)
}

func newReport(profile scoring.Profile, result scoring.Result, l *ledger.Ledger) domain.AuditReport {
	all := l.All()
	reported := make([]domain.ReportedDiscrepancy, len(all))
	for i, d := range all {
		reported[i] = domain.ReportedDiscrepancy{
			Rule:          d.Rule,
			Field:         d.Field,
			Category:      d.Category,
			Severity:      profile.Label(d.Severity),
			Expected:      d.Expected,
			Observed:      d.Observed,
			RuleReference: d.RuleReference,
			Explanation:   d.Explanation,
			SuggestedFix:  d.SuggestedFix,
		}
	}
	return domain.AuditReport{
		Status:         result.Status,
		RiskScore:      result.Score,
		RiskLevel:      result.Level,
		Recommendation: result.Recommendation,
		Profile:        profile.Name,
		Discrepancies:  reported,
		Breakdown:      l.Breakdown(),
	}
}

// --- helpers ---

// isText reports whether s holds readable text: valid UTF-8 with at least
// one letter or digit and few control characters.
func isText(s string) bool {
	if strings.TrimSpace(s) == "" || !utf8.ValidString(s) {
		return false
	}
	var total, readable, control int
	for _, r := range s {
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			readable++
		case unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' && r != '\f':
			control++
		}
	}
	return readable > 0 && control*10 <= total
}

// jurisdictionSpecs teaches the invoice extractor the labels declared by
// jurisdiction requirements. Labels for a built-in field extend it.
func jurisdictionSpecs(js []rules.Jurisdiction) []extraction.FieldSpec {
	builtin := make(map[domain.FieldName]extraction.FieldSpec)
	for _, s := range extraction.InvoiceSpecs() {
		builtin[s.Name] = s
	}

	var out []extraction.FieldSpec
	index := make(map[domain.FieldName]int)
	for _, j := range js {
		for _, req := range j.Requirements {
			if len(req.Labels) == 0 {
				continue
			}
			if i, ok := index[req.Field]; ok {
				out[i].Labels = append(out[i].Labels, req.Labels...)
				continue
			}
			spec, ok := builtin[req.Field]
			if !ok {
				spec = extraction.FieldSpec{Name: req.Field, Kind: domain.KindText}
			}
			spec.Labels = append(append([]string(nil), spec.Labels...), req.Labels...)
			index[req.Field] = len(out)
			out = append(out, spec)
		}
	}
	return out
}
