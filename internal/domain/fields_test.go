package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedFieldsIsolatedFromSourceMap(t *testing.T) {
	src := map[FieldName]FieldValue{
		FieldDescription: TextValue("Tea", "Tea"),
	}
	f := NewExtractedFields(src)
	src[FieldDescription] = TextValue("Coffee", "Coffee")

	got, ok := f.Text(FieldDescription)
	require.True(t, ok)
	assert.Equal(t, "Tea", got)
}

func TestFieldValueAccessors(t *testing.T) {
	amount := decimal.RequireFromString("50000.00")
	when := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	f := NewExtractedFields(map[FieldName]FieldValue{
		FieldAmount:       MoneyValue("USD 50,000.00", amount, "USD"),
		FieldShipmentDate: DateValue("15-03-2024", when),
		FieldExpiryDate:   Unparsable(KindDate, "31-02-2024"),
	})

	t.Run("money", func(t *testing.T) {
		d, ccy, ok := f.Money(FieldAmount)
		require.True(t, ok)
		assert.True(t, d.Equal(amount))
		assert.Equal(t, "USD", ccy)
	})

	t.Run("money is also a decimal", func(t *testing.T) {
		d, ok := f.Decimal(FieldAmount)
		require.True(t, ok)
		assert.True(t, d.Equal(amount))
	})

	t.Run("date", func(t *testing.T) {
		d, ok := f.Date(FieldShipmentDate)
		require.True(t, ok)
		assert.Equal(t, when, d)
		assert.Equal(t, "2024-03-15", f.Get(FieldShipmentDate).String())
	})

	t.Run("unparsed keeps raw text", func(t *testing.T) {
		v := f.Get(FieldExpiryDate)
		assert.False(t, v.Present())
		assert.True(t, v.Unparsed())
		assert.Equal(t, "31-02-2024", v.Raw())
	})

	t.Run("missing field is absent", func(t *testing.T) {
		v := f.Get(FieldIncoterm)
		assert.False(t, v.Present())
		assert.False(t, v.Unparsed())
		_, ok := f.Text(FieldIncoterm)
		assert.False(t, ok)
	})

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []FieldName{FieldAmount, FieldExpiryDate, FieldShipmentDate}, f.Names())
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityMajor))
	assert.True(t, SeverityMajor.AtLeast(SeverityMajor))
	assert.False(t, SeverityMinor.AtLeast(SeverityMajor))
	assert.Less(t, SeverityMinor.Rank(), SeverityMajor.Rank())
	assert.Less(t, SeverityMajor.Rank(), SeverityCritical.Rank())
}

func TestFieldValueJSON(t *testing.T) {
	v := MoneyValue("USD 1,200", decimal.NewFromInt(1200), "USD")
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"present":true,"kind":"money","value":"1200","currency":"USD","raw":"USD 1,200"}`, string(out))

	out, err = json.Marshal(Absent())
	require.NoError(t, err)
	assert.JSONEq(t, `{"present":false}`, string(out))
}
