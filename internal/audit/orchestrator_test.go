package audit

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/ledger"
	"github.com/exportsafe/lcaudit/internal/rules"
	"github.com/exportsafe/lcaudit/internal/scoring"
)

const lcText = `IRREVOCABLE DOCUMENTARY CREDIT
LC No.: LC/2024/00917
Beneficiary: Darjeeling Leaf Exports Pvt Ltd
Applicant: Hamburg Tea Importers GmbH
Amount: USD 50,000.00
Description of Goods: Tea Black CTC
Latest Shipment Date: 15 March 2024
Expiry Date: 30/04/2024
Incoterms 2020: FOB
Port of Loading: Kolkata
Port of Discharge: Hamburg`

type invoice struct {
	description string
	unitPrice   string
	total       string
	extra       []string
}

func (i invoice) text() string {
	lines := []string{
		"COMMERCIAL INVOICE",
		"Invoice No: DLE/EXP/0042",
		"Invoice Date: 2024-03-01",
		"Exporter: Darjeeling Leaf Exports Pvt Ltd",
		"Buyer: Hamburg Tea Importers GmbH",
		"Description of Goods: " + i.description,
		"Quantity: 1,000 KGS",
		"Unit Price: " + i.unitPrice,
		"Total Amount: " + i.total,
		"Shipment Date: 10-03-2024",
		"Terms: FOB",
		"Port of Loading: Kolkata",
		"Port of Discharge: Hamburg",
	}
	return strings.Join(append(lines, i.extra...), "\n")
}

func cleanInvoice() invoice {
	return invoice{description: "Tea Black CTC", unitPrice: "USD 50.00", total: "USD 50,000.00"}
}

func newOrchestrator(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(cfg)
	require.NoError(t, err)
	return o
}

func TestAuditScenarios(t *testing.T) {
	o := newOrchestrator(t, Config{})

	t.Run("compliant presentation", func(t *testing.T) {
		r := o.Audit(lcText, cleanInvoice().text(), Options{})
		assert.Equal(t, domain.StatusPass, r.Status)
		assert.Equal(t, 0, r.RiskScore)
		assert.Equal(t, domain.RiskCompliant, r.RiskLevel)
		assert.Equal(t, scoring.RecommendApprove, r.Recommendation)
		assert.Empty(t, r.Discrepancies)
		assert.Equal(t, scoring.ProfileForensic, r.Profile)
	})

	t.Run("invoice overdrawn", func(t *testing.T) {
		inv := cleanInvoice()
		inv.unitPrice, inv.total = "USD 60.00", "USD 60,000.00"
		r := o.Audit(lcText, inv.text(), Options{})

		require.Len(t, r.Discrepancies, 1)
		d := r.Discrepancies[0]
		assert.Equal(t, domain.CategoryMath, d.Category)
		assert.Equal(t, "CRITICAL", d.Severity)
		assert.Equal(t, domain.StatusFail, r.Status)
		assert.GreaterOrEqual(t, r.RiskScore, 30)
		assert.Equal(t, 1, r.Breakdown.Critical)
	})

	t.Run("description word order", func(t *testing.T) {
		inv := cleanInvoice()
		inv.description = "Black Tea CTC"
		r := o.Audit(lcText, inv.text(), Options{})

		require.Len(t, r.Discrepancies, 1)
		d := r.Discrepancies[0]
		assert.Equal(t, domain.CategoryText, d.Category)
		assert.NotEqual(t, "CRITICAL", d.Severity)
		assert.Equal(t, domain.StatusPass, r.Status)
	})

	t.Run("freight under FOB", func(t *testing.T) {
		inv := cleanInvoice()
		inv.extra = []string{"Freight: USD 1,200.00"}
		r := o.Audit(lcText, inv.text(), Options{})

		require.Len(t, r.Discrepancies, 1)
		d := r.Discrepancies[0]
		assert.Equal(t, domain.CategoryIncoterm, d.Category)
		assert.Equal(t, "MAJOR", d.Severity)
		assert.Equal(t, domain.FieldFreight, d.Field)
		assert.Equal(t, 15, r.RiskScore)
	})
}

// Documents carrying only the fields each scenario is about. Dates the
// documents never mention must not turn into findings.
func TestAuditMinimalDocuments(t *testing.T) {
	o := newOrchestrator(t, Config{})

	lc := func(extra ...string) string {
		return strings.Join(append([]string{
			"Amount: USD 50,000",
			"Description of Goods: Tea Black CTC",
			"Expiry Date: 30-04-2024",
		}, extra...), "\n")
	}
	inv := func(total, desc string, extra ...string) string {
		return strings.Join(append([]string{
			"Total Amount: " + total,
			"Description of Goods: " + desc,
			"Shipment Date: 01-03-2024",
		}, extra...), "\n")
	}

	tests := []struct {
		name     string
		lc       string
		invoice  string
		category domain.Category
		severity string
	}{
		{"compliant", lc(), inv("USD 50,000", "Tea Black CTC"), "", ""},
		{"overdrawn", lc(), inv("USD 60,000", "Tea Black CTC"), domain.CategoryMath, "CRITICAL"},
		{"word order", lc(), inv("USD 50,000", "Black Tea CTC"), domain.CategoryText, "MINOR"},
		{"freight under FOB", lc("Incoterms: FOB"), inv("USD 50,000", "Tea Black CTC", "Freight: USD 500"), domain.CategoryIncoterm, "MAJOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := o.Audit(tt.lc, tt.invoice, Options{})
			if tt.category == "" {
				assert.Empty(t, r.Discrepancies)
				assert.Equal(t, 0, r.RiskScore)
				assert.Equal(t, domain.StatusPass, r.Status)
				return
			}
			require.Len(t, r.Discrepancies, 1, "%+v", r.Discrepancies)
			assert.Equal(t, tt.category, r.Discrepancies[0].Category)
			assert.Equal(t, tt.severity, r.Discrepancies[0].Severity)
		})
	}
}

func TestAuditEmptyInput(t *testing.T) {
	o := newOrchestrator(t, Config{})

	for name, docs := range map[string][2]string{
		"both empty":      {"", ""},
		"whitespace":      {"  \n\t", "\n"},
		"binary":          {"\x00\x01\x02\x03\x04", "\x7f\x00\x00\x1b"},
		"invalid unicode": {"\xff\xfe\xfd", ""},
	} {
		t.Run(name, func(t *testing.T) {
			r := o.Audit(docs[0], docs[1], Options{})
			require.Len(t, r.Discrepancies, 1)
			d := r.Discrepancies[0]
			assert.Equal(t, domain.CategorySystem, d.Category)
			assert.Equal(t, "CRITICAL", d.Severity)
			assert.Equal(t, domain.FieldDocuments, d.Field)
			assert.Equal(t, 100, r.RiskScore)
			assert.Equal(t, domain.RiskCritical, r.RiskLevel)
			assert.Equal(t, domain.StatusFail, r.Status)
		})
	}

	t.Run("one readable document is examined", func(t *testing.T) {
		r := o.Audit(lcText, "", Options{})
		assert.NotEmpty(t, r.Discrepancies)
		for _, d := range r.Discrepancies {
			assert.NotEqual(t, domain.CategorySystem, d.Category)
		}
	})
}

func TestAuditTransitions(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	o := newOrchestrator(t, Config{OnTransition: func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(from)+">"+string(to))
	}})

	o.Audit(lcText, cleanInvoice().text(), Options{})
	assert.Equal(t, []string{"INIT>EXTRACTED", "EXTRACTED>EVALUATED", "EVALUATED>SCORED", "SCORED>REPORTED"}, seen)

	seen = nil
	o.Audit("", "", Options{})
	assert.Equal(t, []string{"INIT>FAILED"}, seen)
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateScored.Terminal())
}

type faultyRule struct {
	panics bool
}

func (faultyRule) Name() string { return "faulty" }

func (r faultyRule) Check(_ rules.Input, l *ledger.Ledger) error {
	l.Add(domain.Discrepancy{Field: domain.FieldAmount, Category: domain.CategoryMath, Severity: domain.SeverityMinor})
	if r.panics {
		var m map[string]int
		m["boom"]++
	}
	return errors.New("decimal: malformed amount")
}

func TestAuditRuleFaultIsContained(t *testing.T) {
	for _, panics := range []bool{false, true} {
		o := newOrchestrator(t, Config{Extra: []rules.Rule{faultyRule{panics: panics}}})
		r := o.Audit(lcText, cleanInvoice().text(), Options{})

		require.Len(t, r.Discrepancies, 1, "partial findings of a faulted rule are dropped")
		d := r.Discrepancies[0]
		assert.Equal(t, "faulty", d.Rule)
		assert.Equal(t, domain.CategorySystem, d.Category)
		assert.Equal(t, domain.FieldEngine, d.Field)
		assert.Equal(t, "CRITICAL", d.Severity)
		assert.Contains(t, d.Explanation, "faulty")
		assert.Equal(t, domain.StatusFail, r.Status)
	}
}

func TestAuditUnknownJurisdictionIsARuleFault(t *testing.T) {
	o := newOrchestrator(t, Config{Rules: rules.Config{Jurisdictions: rules.DefaultJurisdictions()}})
	assert.False(t, o.HasJurisdiction("BR"))
	assert.Equal(t, []string{"EU", "IN"}, o.Jurisdictions())

	r := o.Audit(lcText, cleanInvoice().text(), Options{Jurisdiction: "BR"})
	require.Len(t, r.Discrepancies, 1)
	assert.Equal(t, rules.NameRegulatory, r.Discrepancies[0].Rule)
	assert.Equal(t, domain.CategorySystem, r.Discrepancies[0].Category)
}

func TestAuditJurisdiction(t *testing.T) {
	o := newOrchestrator(t, Config{Rules: rules.Config{Jurisdictions: rules.DefaultJurisdictions()}})

	r := o.Audit(lcText, cleanInvoice().text(), Options{Jurisdiction: "IN"})
	assert.Equal(t, 3, r.Breakdown.ByCategory[domain.CategoryRegulatory])

	inv := cleanInvoice()
	inv.extra = []string{
		"GSTIN: 19AABCD1234E1Z5",
		"IEC Code: 0299001234",
		"HSN Code: 0902.40.20",
		"IGST @ 18%: INR 1,800.00",
		"Export under LUT ARN AD190324000123",
	}
	r = o.Audit(lcText, inv.text(), Options{Jurisdiction: "in"})
	require.Len(t, r.Discrepancies, 1)
	assert.Equal(t, domain.FieldIGST, r.Discrepancies[0].Field)
	assert.Equal(t, "CRITICAL", r.Discrepancies[0].Severity)
}

func TestAuditJurisdictionLabelsExtendExtraction(t *testing.T) {
	uk := rules.Jurisdiction{
		Code: "UK",
		Name: "United Kingdom",
		Requirements: []rules.Requirement{{
			Field:     "vat_number",
			Label:     "VAT number",
			Format:    `GB[0-9]{9}`,
			Reference: "VAT Regulations 1995, reg. 14",
			Labels:    []string{`VAT\s+(?:Reg(?:istration)?\s+)?No\.?`},
		}},
	}
	o := newOrchestrator(t, Config{Rules: rules.Config{Jurisdictions: []rules.Jurisdiction{uk}}})

	inv := cleanInvoice()
	inv.extra = []string{"VAT Reg No: GB 123 4567 89"}
	r := o.Audit(lcText, inv.text(), Options{Jurisdiction: "UK", IncludeFields: true})
	assert.Empty(t, r.Discrepancies)
	require.NotNil(t, r.InvoiceFields)
	assert.True(t, r.InvoiceFields.Has("vat_number"))
}

func TestAuditCorrectsLCSpelling(t *testing.T) {
	o := newOrchestrator(t, Config{Corrections: []extraction.Correction{
		{Pattern: "benificiary", Replacement: "beneficiary"},
		{Pattern: "shipmnet", Replacement: "shipment"},
	}})

	misspelt := strings.NewReplacer("Beneficiary", "Benificiary", "Shipment", "Shipmnet").Replace(lcText)
	r := o.Audit(misspelt, cleanInvoice().text(), Options{IncludeFields: true})

	assert.Empty(t, r.Discrepancies)
	assert.Equal(t, lcText, r.CorrectedLC)
	assert.Len(t, r.Corrections, 2)
	require.NotNil(t, r.LCFields)
	assert.True(t, r.LCFields.Has(domain.FieldBeneficiary))

	clean := o.Audit(lcText, cleanInvoice().text(), Options{})
	assert.Empty(t, clean.CorrectedLC)
	assert.Nil(t, clean.LCFields)
}

func TestAuditBasicProfileLabels(t *testing.T) {
	o := newOrchestrator(t, Config{})
	inv := cleanInvoice()
	inv.extra = []string{"Freight: USD 1,200.00"}

	r := o.Audit(lcText, inv.text(), Options{Profile: scoring.Basic})
	require.Len(t, r.Discrepancies, 1)
	assert.Equal(t, "HIGH", r.Discrepancies[0].Severity)
	assert.Equal(t, 20, r.RiskScore)
	assert.Equal(t, scoring.ProfileBasic, r.Profile)
	assert.Equal(t, 1, r.Breakdown.Major)
}

func TestAuditReportJSONShape(t *testing.T) {
	o := newOrchestrator(t, Config{})
	r := o.Audit(lcText, cleanInvoice().text(), Options{})

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{"status", "risk_score", "risk_level", "recommendation", "discrepancies", "breakdown"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, []any{}, m["discrepancies"])
	assert.NotContains(t, m, "corrected_lc")
	assert.NotContains(t, m, "lc_fields")
}

func TestAuditIsSafeForConcurrentUse(t *testing.T) {
	o := newOrchestrator(t, Config{Rules: rules.Config{Jurisdictions: rules.DefaultJurisdictions()}})

	overdrawn := cleanInvoice()
	overdrawn.unitPrice, overdrawn.total = "USD 60.00", "USD 60,000.00"
	reordered := cleanInvoice()
	reordered.description = "Black Tea CTC"
	invoices := []string{cleanInvoice().text(), overdrawn.text(), reordered.text()}

	want := make([]domain.AuditReport, len(invoices))
	for i, inv := range invoices {
		want[i] = o.Audit(lcText, inv, Options{Jurisdiction: "IN"})
	}

	var wg sync.WaitGroup
	got := make([]domain.AuditReport, 60)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = o.Audit(lcText, invoices[i%len(invoices)], Options{Jurisdiction: "IN"})
		}(i)
	}
	wg.Wait()

	for i, r := range got {
		assert.Equal(t, want[i%len(invoices)], r)
	}
}
