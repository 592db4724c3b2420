package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FieldSetVersion identifies the set of field names produced by the extractors.
// Bump it whenever a field is renamed or removed.
const FieldSetVersion = 2

// FieldName is the logical name of an extracted document field.
type FieldName string

// LC fields.
const (
	FieldLCNumber        FieldName = "lc_number"
	FieldBeneficiary     FieldName = "beneficiary"
	FieldApplicant       FieldName = "applicant"
	FieldAmount          FieldName = "amount"
	FieldCurrency        FieldName = "currency"
	FieldDescription     FieldName = "description"
	FieldShipmentDate    FieldName = "shipment_date"
	FieldExpiryDate      FieldName = "expiry_date"
	FieldIncoterm        FieldName = "incoterm"
	FieldPortOfLoading   FieldName = "port_of_loading"
	FieldPortOfDischarge FieldName = "port_of_discharge"
	FieldTransshipment   FieldName = "transshipment"
	FieldPartialShipment FieldName = "partial_shipment"
	FieldTolerance       FieldName = "tolerance"
	FieldIssueDate       FieldName = "issue_date"
)

// Invoice fields. Invoices also reuse the shared names above (description,
// currency, shipment_date, incoterm, ports, transshipment, partial_shipment).
const (
	FieldInvoiceNumber FieldName = "invoice_number"
	FieldInvoiceDate   FieldName = "invoice_date"
	FieldIssuer        FieldName = "issuer"
	FieldBuyer         FieldName = "buyer"
	FieldQuantity      FieldName = "quantity"
	FieldUnitPrice     FieldName = "unit_price"
	FieldTotalAmount   FieldName = "total_amount"
	FieldFreight       FieldName = "freight"
	FieldInsurance     FieldName = "insurance"
	FieldGSTIN         FieldName = "gstin"
	FieldIEC           FieldName = "iec"
	FieldHSNCode       FieldName = "hsn_code"
	FieldIGST          FieldName = "igst"
	FieldLUT           FieldName = "lut"
	FieldEORI          FieldName = "eori"
	FieldHSCode        FieldName = "hs_code"
)

// Pseudo-fields named by SYSTEM discrepancies.
const (
	FieldDocuments FieldName = "documents"
	FieldEngine    FieldName = "engine"
)

// ValueKind tags what a present FieldValue holds.
type ValueKind string

const (
	KindText    ValueKind = "text"
	KindDecimal ValueKind = "decimal"
	KindMoney   ValueKind = "money"
	KindDate    ValueKind = "date"
)

// FieldValue is an optional scalar. A value is either present with one of the
// kinds above, or absent. An absent value may still carry the raw text that
// failed to parse, so rules can tell "not found" from "found but invalid".
type FieldValue struct {
	present  bool
	kind     ValueKind
	raw      string
	text     string
	number   decimal.Decimal
	currency string
	date     time.Time
}

// Absent returns a value for a field that was not found.
func Absent() FieldValue {
	return FieldValue{}
}

// Unparsable returns an absent value that remembers the raw text it came from.
func Unparsable(kind ValueKind, raw string) FieldValue {
	return FieldValue{kind: kind, raw: raw}
}

func TextValue(raw, text string) FieldValue {
	return FieldValue{present: true, kind: KindText, raw: raw, text: text}
}

func DecimalValue(raw string, d decimal.Decimal) FieldValue {
	return FieldValue{present: true, kind: KindDecimal, raw: raw, number: d}
}

func MoneyValue(raw string, d decimal.Decimal, currency string) FieldValue {
	return FieldValue{present: true, kind: KindMoney, raw: raw, number: d, currency: currency}
}

func DateValue(raw string, t time.Time) FieldValue {
	return FieldValue{present: true, kind: KindDate, raw: raw, date: t}
}

func (v FieldValue) Present() bool   { return v.present }
func (v FieldValue) Kind() ValueKind { return v.kind }

// Raw is the source text the value was captured from, present or not.
func (v FieldValue) Raw() string { return v.raw }

// Unparsed reports whether text was found for the field but could not be parsed.
func (v FieldValue) Unparsed() bool { return !v.present && v.raw != "" }

// Text returns the textual form of a present value. Non-text kinds return their raw text.
func (v FieldValue) Text() (string, bool) {
	if !v.present {
		return "", false
	}
	if v.kind == KindText {
		return v.text, true
	}
	return v.raw, true
}

// Decimal returns the numeric part of a decimal or money value.
func (v FieldValue) Decimal() (decimal.Decimal, bool) {
	if !v.present || (v.kind != KindDecimal && v.kind != KindMoney) {
		return decimal.Zero, false
	}
	return v.number, true
}

// Money returns the amount and currency code (possibly empty) of a money value.
func (v FieldValue) Money() (decimal.Decimal, string, bool) {
	if !v.present || v.kind != KindMoney {
		return decimal.Zero, "", false
	}
	return v.number, v.currency, true
}

func (v FieldValue) Date() (time.Time, bool) {
	if !v.present || v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String renders the value for reports: dates as YYYY-MM-DD, money with its code.
func (v FieldValue) String() string {
	if !v.present {
		return ""
	}
	switch v.kind {
	case KindDate:
		return v.date.Format("2006-01-02")
	case KindMoney:
		if v.currency == "" {
			return v.number.String()
		}
		return v.currency + " " + v.number.String()
	case KindDecimal:
		return v.number.String()
	default:
		return v.text
	}
}

type fieldValueJSON struct {
	Present  bool      `json:"present"`
	Kind     ValueKind `json:"kind,omitempty"`
	Value    string    `json:"value,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Raw      string    `json:"raw,omitempty"`
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	out := fieldValueJSON{Present: v.present, Kind: v.kind, Raw: v.raw}
	if v.present {
		out.Value = v.String()
		if v.kind == KindMoney {
			out.Value = v.number.String()
			out.Currency = v.currency
		}
	}
	return json.Marshal(out)
}

// ExtractedFields maps field names to values for one document. It is built
// once by an extractor and never modified afterwards.
type ExtractedFields struct {
	values map[FieldName]FieldValue
}

// NewExtractedFields copies m so later changes to it are not observed.
func NewExtractedFields(m map[FieldName]FieldValue) ExtractedFields {
	values := make(map[FieldName]FieldValue, len(m))
	for k, v := range m {
		values[k] = v
	}
	return ExtractedFields{values: values}
}

// Get returns the value for name, or an absent value when it was never captured.
func (f ExtractedFields) Get(name FieldName) FieldValue {
	return f.values[name]
}

func (f ExtractedFields) Has(name FieldName) bool {
	return f.values[name].Present()
}

func (f ExtractedFields) Text(name FieldName) (string, bool) {
	return f.Get(name).Text()
}

func (f ExtractedFields) Decimal(name FieldName) (decimal.Decimal, bool) {
	return f.Get(name).Decimal()
}

func (f ExtractedFields) Money(name FieldName) (decimal.Decimal, string, bool) {
	return f.Get(name).Money()
}

func (f ExtractedFields) Date(name FieldName) (time.Time, bool) {
	return f.Get(name).Date()
}

// Names returns the captured field names (present or unparsed), sorted.
func (f ExtractedFields) Names() []FieldName {
	names := make([]FieldName, 0, len(f.values))
	for k := range f.values {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len counts the present fields.
func (f ExtractedFields) Len() int {
	n := 0
	for _, v := range f.values {
		if v.Present() {
			n++
		}
	}
	return n
}

func (f ExtractedFields) MarshalJSON() ([]byte, error) {
	m := make(map[FieldName]FieldValue, len(f.values))
	for k, v := range f.values {
		m[k] = v
	}
	return json.Marshal(m)
}
