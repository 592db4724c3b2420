package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportsafe/lcaudit/internal/domain"
)

func temporalInput(invDate, invShip, lcShip, lcExpiry string) Input {
	return Input{
		LC: fields(fieldMap{
			domain.FieldShipmentDate: date(lcShip),
			domain.FieldExpiryDate:   date(lcExpiry),
		}),
		Invoice: fields(fieldMap{
			domain.FieldInvoiceDate:  date(invDate),
			domain.FieldShipmentDate: date(invShip),
		}),
	}
}

func TestTemporalRuleCompliant(t *testing.T) {
	l := run(TemporalRule{}, temporalInput("2024-03-01", "2024-03-10", "2024-03-15", "2024-04-30"))
	assert.Equal(t, 0, l.Len())
}

func TestTemporalRuleInvoiceDateBoundary(t *testing.T) {
	l := run(TemporalRule{}, temporalInput("2024-03-10", "2024-03-10", "2024-03-15", "2024-04-30"))
	assert.Equal(t, 0, l.Len(), "same day is allowed")

	for _, invDate := range []string{"2024-03-11", "2024-03-31", "2025-01-01"} {
		l := run(TemporalRule{}, temporalInput(invDate, "2024-03-10", "2024-03-15", "2025-04-30"))
		crit := l.BySeverity(domain.SeverityCritical)
		require.Len(t, crit, 1, invDate)
		assert.Equal(t, domain.FieldInvoiceDate, crit[0].Field)
		assert.Equal(t, 1, l.Len())
	}
}

func TestTemporalRuleLateShipment(t *testing.T) {
	l := run(TemporalRule{}, temporalInput("2024-03-01", "2024-03-20", "2024-03-15", "2024-05-30"))
	require.Equal(t, 1, l.Len())
	d := l.All()[0]
	assert.Equal(t, domain.SeverityCritical, d.Severity)
	assert.Equal(t, domain.FieldShipmentDate, d.Field)
	assert.Equal(t, "2024-03-20", d.Observed)
	assert.Contains(t, d.Explanation, "5 day(s) after")
}

func TestTemporalRulePresentationWindow(t *testing.T) {
	t.Run("exactly 21 days passes", func(t *testing.T) {
		l := run(TemporalRule{}, temporalInput("2024-03-01", "2024-03-10", "2024-03-15", "2024-03-31"))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("shortfall reported in days", func(t *testing.T) {
		l := run(TemporalRule{}, temporalInput("2024-03-01", "2024-03-10", "2024-03-15", "2024-03-25"))
		require.Equal(t, 1, l.Len())
		d := l.All()[0]
		assert.Equal(t, domain.SeverityMajor, d.Severity)
		assert.Equal(t, "15 days", d.Observed)
		assert.Contains(t, d.Explanation, "6 day(s) short")
	})

	t.Run("configurable window", func(t *testing.T) {
		l := run(TemporalRule{PresentationDays: 10}, temporalInput("2024-03-01", "2024-03-10", "2024-03-15", "2024-03-25"))
		assert.Equal(t, 0, l.Len())
	})
}

func TestTemporalRuleMissingDates(t *testing.T) {
	t.Run("unreadable date is reported", func(t *testing.T) {
		in := Input{
			LC: fields(fieldMap{
				domain.FieldShipmentDate: date("2024-03-15"),
				domain.FieldExpiryDate:   domain.Unparsable(domain.KindDate, "31-02-2024"),
			}),
			Invoice: fields(fieldMap{
				domain.FieldInvoiceDate:  date("2024-03-01"),
				domain.FieldShipmentDate: date("2024-03-10"),
			}),
		}
		l := run(TemporalRule{}, in)
		require.Equal(t, 1, l.Len())

		d := l.All()[0]
		assert.Equal(t, domain.SeverityMajor, d.Severity)
		assert.Equal(t, domain.CategoryDate, d.Category)
		assert.Equal(t, domain.FieldExpiryDate, d.Field)
		assert.Contains(t, d.Explanation, "could not be interpreted")
		assert.Equal(t, "31-02-2024", d.Observed)
	})

	t.Run("absent dates skip their checks", func(t *testing.T) {
		in := Input{
			LC: fields(fieldMap{
				domain.FieldExpiryDate: date("2024-04-30"),
			}),
			Invoice: fields(fieldMap{
				domain.FieldShipmentDate: date("2024-03-01"),
			}),
		}
		assert.Equal(t, 0, run(TemporalRule{}, in).Len())
	})

	t.Run("remaining checks still run", func(t *testing.T) {
		in := Input{
			LC: fields(fieldMap{
				domain.FieldExpiryDate: date("2024-03-10"),
			}),
			Invoice: fields(fieldMap{
				domain.FieldShipmentDate: date("2024-03-01"),
			}),
		}
		l := run(TemporalRule{}, in)
		require.Equal(t, 1, l.Len())
		assert.Equal(t, domain.FieldExpiryDate, l.All()[0].Field)
		assert.Equal(t, "9 days", l.All()[0].Observed)
	})
}
