package rules

import "github.com/exportsafe/lcaudit/internal/domain"

// India covers Indian export invoices: GST registration, Importer-Exporter
// Code, HSN classification and the IGST/LUT exclusivity.
var India = Jurisdiction{
	Code: "IN",
	Name: "India",
	Requirements: []Requirement{
		{
			Field:      domain.FieldGSTIN,
			Label:      "GSTIN",
			Format:     `[0-9A-Z]{15}`,
			FormatHint: "15 alphanumeric characters",
			Reference:  "CGST Rules 2017, Rule 46",
		},
		{
			Field:      domain.FieldIEC,
			Label:      "IEC",
			Format:     `[0-9A-Z]{10}`,
			FormatHint: "10 alphanumeric characters",
			Reference:  "Foreign Trade Policy 2023, Para 2.05",
		},
		{
			Field:      domain.FieldHSNCode,
			Label:      "HSN code",
			Format:     `[0-9]{6,8}`,
			FormatHint: "6 to 8 digits",
			Reference:  "Customs Tariff Act 1975, ITC-HS classification",
		},
	},
	Conflicts: []Conflict{
		{
			Field:        domain.FieldIGST,
			When:         domain.FieldLUT,
			Severity:     domain.SeverityCritical,
			Reference:    "RBI/FEMA - Export under Bond/LUT",
			Explanation:  "IGST is charged on an export declared under LUT/bond; zero-rated exports under LUT must not carry IGST.",
			SuggestedFix: "Remove the IGST line, or drop the LUT declaration and claim a refund of the IGST paid.",
		},
	},
}

// EU covers exports into the European Union customs territory.
var EU = Jurisdiction{
	Code: "EU",
	Name: "European Union",
	Requirements: []Requirement{
		{
			Field:      domain.FieldEORI,
			Label:      "EORI number",
			Format:     `[A-Z]{2}[0-9A-Z]{1,15}`,
			FormatHint: "a two-letter country code followed by up to 15 characters",
			Reference:  "Regulation (EU) No 952/2013, Art. 9",
		},
		{
			Field:      domain.FieldHSCode,
			Label:      "CN/HS code",
			Format:     `[0-9]{6,10}`,
			FormatHint: "6 to 10 digits",
			Reference:  "Council Regulation (EEC) No 2658/87",
		},
	},
}

// DefaultJurisdictions returns the built-in jurisdiction tables.
func DefaultJurisdictions() []Jurisdiction {
	return []Jurisdiction{India, EU}
}
