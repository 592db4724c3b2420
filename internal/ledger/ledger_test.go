package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportsafe/lcaudit/internal/domain"
)

func sample() *Ledger {
	l := New()
	l.Add(
		domain.Discrepancy{Rule: "math", Field: domain.FieldTotalAmount, Category: domain.CategoryMath, Severity: domain.SeverityCritical},
		domain.Discrepancy{Rule: "description", Field: domain.FieldDescription, Category: domain.CategoryText, Severity: domain.SeverityMinor},
		domain.Discrepancy{Rule: "temporal", Field: domain.FieldExpiryDate, Category: domain.CategoryDate, Severity: domain.SeverityMajor},
		domain.Discrepancy{Rule: "math", Field: domain.FieldQuantity, Category: domain.CategoryMath, Severity: domain.SeverityMajor},
	)
	return l
}

func TestLedgerViews(t *testing.T) {
	l := sample()

	assert.Equal(t, 4, l.Len())
	assert.True(t, l.HasCritical())
	assert.Len(t, l.BySeverity(domain.SeverityMajor), 2)
	assert.Len(t, l.AtLeast(domain.SeverityMajor), 3)
	assert.Len(t, l.AtLeast(domain.SeverityMinor), 4)
	assert.Len(t, l.ByCategory(domain.CategoryMath), 2)
	assert.Len(t, l.ByRule("temporal"), 1)

	all := l.All()
	require.Len(t, all, 4)
	assert.Equal(t, domain.FieldTotalAmount, all[0].Field, "insertion order kept")
	assert.Equal(t, domain.FieldQuantity, all[3].Field)
}

func TestLedgerAllIsACopy(t *testing.T) {
	l := sample()
	all := l.All()
	all[0].Severity = domain.SeverityMinor

	assert.Equal(t, domain.SeverityCritical, l.All()[0].Severity)
}

func TestLedgerBreakdown(t *testing.T) {
	b := sample().Breakdown()
	assert.Equal(t, 1, b.Critical)
	assert.Equal(t, 2, b.Major)
	assert.Equal(t, 1, b.Minor)
	assert.Equal(t, 4, b.Total)
	assert.Equal(t, 2, b.ByCategory[domain.CategoryMath])
	assert.Equal(t, 0, b.ByCategory[domain.CategoryGeo])
}

func TestEmptyLedger(t *testing.T) {
	l := New()
	assert.False(t, l.HasCritical())
	assert.Empty(t, l.All())
	assert.Equal(t, 0, l.Breakdown().Total)
}
