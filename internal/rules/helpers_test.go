package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ledger"
)

type fieldMap map[domain.FieldName]domain.FieldValue

func fields(m fieldMap) domain.ExtractedFields {
	return domain.NewExtractedFields(m)
}

func text(s string) domain.FieldValue {
	return domain.TextValue(s, s)
}

func money(amount, code string) domain.FieldValue {
	raw := amount
	if code != "" {
		raw = code + " " + amount
	}
	return domain.MoneyValue(raw, decimal.RequireFromString(amount), code)
}

func number(s string) domain.FieldValue {
	return domain.DecimalValue(s, decimal.RequireFromString(s))
}

func date(s string) domain.FieldValue {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return domain.DateValue(s, t)
}

func run(r Rule, in Input) *ledger.Ledger {
	l := ledger.New()
	if err := r.Check(in, l); err != nil {
		panic(err)
	}
	return l
}
