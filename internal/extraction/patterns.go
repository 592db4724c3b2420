package extraction

import "github.com/exportsafe/lcaudit/internal/domain"

// FieldSpec describes how one field is located in a document.
//
// Labels are regular-expression fragments matched case-insensitively at the
// start of a line and followed by ':' or '='. Mentions are fragments matched
// anywhere in a line; they are only consulted when no labelled line was found
// and capture the whole mentioning line.
type FieldSpec struct {
	Name     domain.FieldName `yaml:"name" json:"name"`
	Kind     domain.ValueKind `yaml:"kind" json:"kind"`
	Labels   []string         `yaml:"labels" json:"labels"`
	Mentions []string         `yaml:"mentions,omitempty" json:"mentions,omitempty"`
}

// Shared label fragments. SWIFT MT700 tags are accepted both as "Field 45A"
// and in tag form ":45A:".
const (
	labelIncoterm        = `Incoterms?(?:\s*20\d\d)?|(?:Trade|Delivery|Price|Shipping)\s+Terms|Terms\s+of\s+(?:Delivery|Sale)|Terms`
	labelPortOfLoading   = `Port\s+of\s+Loading(?:\s*/\s*Airport\s+of\s+Departure)?|Loading\s+Port|POL|Field\s*44E|:44E`
	labelPortOfDischarge = `Port\s+of\s+Discharge(?:\s*/\s*Airport\s+of\s+Destination)?|Discharge\s+Port|Destination\s+Port|POD|Field\s*44F|:44F`
	labelTransshipment   = `Trans-?s?hipments?|Field\s*43T|:43T`
	labelPartialShipment = `Partial\s+Shipments?|Field\s*43P|:43P`
	labelCurrency        = `Currency(?:\s+Code)?`

	mentionTransshipment   = `trans-?s?hip`
	mentionPartialShipment = `partial\s+ship`
)

var lcSpecs = []FieldSpec{
	{
		Name:   domain.FieldLCNumber,
		Kind:   domain.KindText,
		Labels: []string{`(?:LC|L/C|Letter\s+of\s+Credit|Documentary\s+Credit|Credit)\s*(?:No\.?|Number|#|Ref(?:erence)?)`, `Field\s*20`, `:20`},
	},
	{
		Name:   domain.FieldBeneficiary,
		Kind:   domain.KindText,
		Labels: []string{`Beneficiary(?:\s+Name)?`, `Field\s*59`, `:59`},
	},
	{
		Name:   domain.FieldApplicant,
		Kind:   domain.KindText,
		Labels: []string{`Applicant(?:\s+Name)?`, `Field\s*50`, `:50`},
	},
	{
		Name:   domain.FieldAmount,
		Kind:   domain.KindMoney,
		Labels: []string{`(?:LC|L/C|Credit)?\s*Amount`, `Currency\s+Code,?\s+Amount`, `Field\s*32B`, `:32B`},
	},
	{
		Name:   domain.FieldCurrency,
		Kind:   domain.KindText,
		Labels: []string{labelCurrency},
	},
	{
		Name:   domain.FieldDescription,
		Kind:   domain.KindText,
		Labels: []string{`Description(?:\s+of\s+(?:the\s+)?Goods)?(?:\s+and/or\s+Services)?`, `Goods(?:\s+Description)?`, `Field\s*45A`, `:45A`},
	},
	{
		Name:   domain.FieldShipmentDate,
		Kind:   domain.KindDate,
		Labels: []string{`(?:Latest\s+)?Shipment\s+Date`, `(?:Latest|Last)\s+Date\s+(?:of|for)\s+Shipment`, `Date\s+of\s+Shipment`, `Field\s*44C`, `:44C`},
	},
	{
		Name:   domain.FieldExpiryDate,
		Kind:   domain.KindDate,
		Labels: []string{`(?:Date\s+(?:and\s+Place\s+)?of\s+)?Expiry(?:\s+Date)?`, `Expiration\s+Date`, `Valid\s+Until`, `Field\s*31D`, `:31D`},
	},
	{
		Name:   domain.FieldIssueDate,
		Kind:   domain.KindDate,
		Labels: []string{`(?:Date\s+of\s+)?Issue(?:\s+Date)?`, `Issuance\s+Date`, `Field\s*31C`, `:31C`},
	},
	{
		Name:   domain.FieldIncoterm,
		Kind:   domain.KindText,
		Labels: []string{labelIncoterm},
	},
	{
		Name:   domain.FieldPortOfLoading,
		Kind:   domain.KindText,
		Labels: []string{labelPortOfLoading},
	},
	{
		Name:   domain.FieldPortOfDischarge,
		Kind:   domain.KindText,
		Labels: []string{labelPortOfDischarge},
	},
	{
		Name:   domain.FieldTransshipment,
		Kind:   domain.KindText,
		Labels: []string{labelTransshipment},
	},
	{
		Name:   domain.FieldPartialShipment,
		Kind:   domain.KindText,
		Labels: []string{labelPartialShipment},
	},
	{
		Name:   domain.FieldTolerance,
		Kind:   domain.KindText,
		Labels: []string{`(?:Percentage\s+Credit\s+)?(?:Amount\s+)?Tolerance`, `Field\s*39A`, `:39A`},
	},
}

var invoiceSpecs = []FieldSpec{
	{
		Name:   domain.FieldInvoiceNumber,
		Kind:   domain.KindText,
		Labels: []string{`(?:Commercial\s+)?Invoice\s*(?:No\.?|Number|#)`},
	},
	{
		Name:   domain.FieldInvoiceDate,
		Kind:   domain.KindDate,
		Labels: []string{`(?:Commercial\s+)?Invoice\s+Date`, `Date\s+of\s+Invoice`, `Date`},
	},
	{
		Name:   domain.FieldIssuer,
		Kind:   domain.KindText,
		Labels: []string{`Exporter`, `Seller`, `Shipper`, `Supplier`, `Issued\s+By`, `Beneficiary`},
	},
	{
		Name:   domain.FieldBuyer,
		Kind:   domain.KindText,
		Labels: []string{`Importer`, `Buyer`, `Bill\s+To`, `Sold\s+To`, `Consignee`, `Applicant`},
	},
	{
		Name:   domain.FieldDescription,
		Kind:   domain.KindText,
		Labels: []string{`Description(?:\s+of\s+(?:the\s+)?Goods)?`, `Goods(?:\s+Description)?`, `Item\s+Description`, `Product`},
	},
	{
		Name:   domain.FieldQuantity,
		Kind:   domain.KindDecimal,
		Labels: []string{`(?:Total\s+)?Quantity`, `Qty\.?`},
	},
	{
		Name:   domain.FieldUnitPrice,
		Kind:   domain.KindMoney,
		Labels: []string{`Unit\s+Price`, `Price\s+per\s+Unit`, `Rate`},
	},
	{
		Name:   domain.FieldTotalAmount,
		Kind:   domain.KindMoney,
		Labels: []string{`(?:Invoice\s+)?Total(?:\s+(?:Amount|Value|Invoice\s+Value))?`, `Grand\s+Total`, `Invoice\s+(?:Amount|Value)`, `Amount\s+Due`, `Amount`},
	},
	{
		Name:   domain.FieldCurrency,
		Kind:   domain.KindText,
		Labels: []string{labelCurrency},
	},
	{
		Name:   domain.FieldShipmentDate,
		Kind:   domain.KindDate,
		Labels: []string{`(?:Actual\s+)?Shipment\s+Date`, `Date\s+of\s+Shipment`, `Shipping\s+Date`, `B/?L\s+Date`, `Bill\s+of\s+Lading\s+Date`, `On\s+Board\s+Date`, `Shipped\s+on(?:\s+Board)?(?:\s+Date)?`},
	},
	{
		Name:   domain.FieldIncoterm,
		Kind:   domain.KindText,
		Labels: []string{labelIncoterm},
	},
	{
		Name:   domain.FieldPortOfLoading,
		Kind:   domain.KindText,
		Labels: []string{labelPortOfLoading},
	},
	{
		Name:   domain.FieldPortOfDischarge,
		Kind:   domain.KindText,
		Labels: []string{labelPortOfDischarge},
	},
	{
		Name:     domain.FieldTransshipment,
		Kind:     domain.KindText,
		Labels:   []string{labelTransshipment},
		Mentions: []string{mentionTransshipment},
	},
	{
		Name:     domain.FieldPartialShipment,
		Kind:     domain.KindText,
		Labels:   []string{labelPartialShipment},
		Mentions: []string{mentionPartialShipment},
	},
	{
		Name:   domain.FieldFreight,
		Kind:   domain.KindMoney,
		Labels: []string{`(?:Ocean\s+|Air\s+|Sea\s+)?Freight(?:\s+Charges?)?`},
	},
	{
		Name:   domain.FieldInsurance,
		Kind:   domain.KindMoney,
		Labels: []string{`Insurance(?:\s+(?:Charges?|Premium))?`},
	},
	{
		Name:   domain.FieldGSTIN,
		Kind:   domain.KindText,
		Labels: []string{`GSTIN(?:\s+No\.?)?`, `GST\s+(?:No\.?|Number|Registration(?:\s+No\.?)?)`},
	},
	{
		Name:   domain.FieldIEC,
		Kind:   domain.KindText,
		Labels: []string{`IEC(?:\s+(?:Code|No\.?|Number))?`, `Import\s*[/-]?\s*Export\s+Code`},
	},
	{
		Name:   domain.FieldHSNCode,
		Kind:   domain.KindText,
		Labels: []string{`HSN(?:\s*/\s*SAC)?(?:\s+Code)?`, `HS\s+Code`},
	},
	{
		Name:   domain.FieldIGST,
		Kind:   domain.KindMoney,
		Labels: []string{`IGST(?:\s+Amount)?(?:\s*@\s*\d+(?:\.\d+)?\s*%)?`},
	},
	{
		Name:     domain.FieldLUT,
		Kind:     domain.KindText,
		Labels:   []string{`LUT(?:\s+(?:No\.?|Number|ARN))?`, `Letter\s+of\s+Undertaking`},
		Mentions: []string{`\bLUT\b`, `letter\s+of\s+undertaking`, `under\s+bond`},
	},
	{
		Name:   domain.FieldEORI,
		Kind:   domain.KindText,
		Labels: []string{`EORI(?:\s+(?:No\.?|Number))?`},
	},
	{
		Name:   domain.FieldHSCode,
		Kind:   domain.KindText,
		Labels: []string{`HS\s+Code`, `CN\s+Code`, `Commodity\s+Code`, `Tariff\s+Code`},
	},
}

// LCSpecs returns a copy of the built-in LC field specs.
func LCSpecs() []FieldSpec {
	return append([]FieldSpec(nil), lcSpecs...)
}

// InvoiceSpecs returns a copy of the built-in invoice field specs.
func InvoiceSpecs() []FieldSpec {
	return append([]FieldSpec(nil), invoiceSpecs...)
}
