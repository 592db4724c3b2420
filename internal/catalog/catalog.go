// Package catalog holds the editable rule catalog: the LC spelling
// corrections and the jurisdiction tables of the regulatory rule. A catalog
// is plain data; it is compiled into an audit engine elsewhere.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/rules"
)

var validate = validator.New()

// Catalog is the full set of data-driven audit configuration.
type Catalog struct {
	Corrections   []extraction.Correction `yaml:"corrections" json:"corrections" validate:"dive"`
	Jurisdictions []rules.Jurisdiction    `yaml:"jurisdictions" json:"jurisdictions" validate:"dive"`
}

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		Corrections:   DefaultCorrections(),
		Jurisdictions: rules.DefaultJurisdictions(),
	}.Snapshot()
}

// DefaultCorrections lists common misspellings of LC field names and terms.
func DefaultCorrections() []extraction.Correction {
	return []extraction.Correction{
		{Pattern: "benificiary|beneficary", Replacement: "beneficiary"},
		{Pattern: "aplcant|applicent", Replacement: "applicant"},
		{Pattern: "amout|ammount", Replacement: "amount"},
		{Pattern: "curency", Replacement: "currency"},
		{Pattern: "descripion|discription", Replacement: "description"},
		{Pattern: "shipement", Replacement: "shipment"},
		{Pattern: "expiery", Replacement: "expiry"},
		{Pattern: "aloud", Replacement: "allowed"},
		{Pattern: "transihment", Replacement: "transshipment"},
		{Pattern: "discrepency", Replacement: "discrepancy"},
		{Pattern: "recieve", Replacement: "receive"},
		{Pattern: "reciever", Replacement: "receiver"},
		{Pattern: "occured", Replacement: "occurred"},
		{Pattern: "seperate", Replacement: "separate"},
		{Pattern: "neccessary", Replacement: "necessary"},
		{Pattern: "accomodate", Replacement: "accommodate"},
		{Pattern: "garentee|garantee", Replacement: "guarantee"},
		{Pattern: "instrction", Replacement: "instruction"},
		{Pattern: "instrctions", Replacement: "instructions"},
		{Pattern: "conditon", Replacement: "condition"},
		{Pattern: "conditons", Replacement: "conditions"},
		{Pattern: "documnet", Replacement: "document"},
		{Pattern: "documnets", Replacement: "documents"},
		{Pattern: "submision", Replacement: "submission"},
		{Pattern: "submited", Replacement: "submitted"},
	}
}

// Validate checks struct constraints and compiles every pattern.
func (c Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}
	if _, err := extraction.NewCorrector(c.Corrections); err != nil {
		return fmt.Errorf("catalog corrections: %w", err)
	}
	if _, err := rules.NewRegulatoryRule(c.Jurisdictions); err != nil {
		return fmt.Errorf("catalog jurisdictions: %w", err)
	}
	return nil
}

// ValidateJurisdiction checks a single jurisdiction table.
func ValidateJurisdiction(j rules.Jurisdiction) error {
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("jurisdiction validation failed: %w", err)
	}
	if _, err := rules.NewRegulatoryRule([]rules.Jurisdiction{j}); err != nil {
		return err
	}
	return nil
}

// Snapshot returns a deep copy, so the result shares no slices with c.
func (c Catalog) Snapshot() Catalog {
	out := Catalog{
		Corrections:   append([]extraction.Correction(nil), c.Corrections...),
		Jurisdictions: make([]rules.Jurisdiction, len(c.Jurisdictions)),
	}
	for i, j := range c.Jurisdictions {
		out.Jurisdictions[i] = cloneJurisdiction(j)
	}
	return out
}

// Jurisdiction returns the table for code, case-insensitively.
func (c Catalog) Jurisdiction(code string) (rules.Jurisdiction, bool) {
	for _, j := range c.Jurisdictions {
		if strings.EqualFold(j.Code, strings.TrimSpace(code)) {
			return cloneJurisdiction(j), true
		}
	}
	return rules.Jurisdiction{}, false
}

// WithJurisdiction returns a copy of c with j added or replacing the table
// of the same code. Jurisdictions stay sorted by code.
func (c Catalog) WithJurisdiction(j rules.Jurisdiction) Catalog {
	out := c.Snapshot()
	j = cloneJurisdiction(j)
	j.Code = strings.ToUpper(strings.TrimSpace(j.Code))
	replaced := false
	for i := range out.Jurisdictions {
		if strings.EqualFold(out.Jurisdictions[i].Code, j.Code) {
			out.Jurisdictions[i] = j
			replaced = true
		}
	}
	if !replaced {
		out.Jurisdictions = append(out.Jurisdictions, j)
	}
	sort.Slice(out.Jurisdictions, func(a, b int) bool {
		return out.Jurisdictions[a].Code < out.Jurisdictions[b].Code
	})
	return out
}

// WithoutJurisdiction returns a copy of c without code, and whether it was present.
func (c Catalog) WithoutJurisdiction(code string) (Catalog, bool) {
	out := c.Snapshot()
	kept := out.Jurisdictions[:0]
	found := false
	for _, j := range out.Jurisdictions {
		if strings.EqualFold(j.Code, strings.TrimSpace(code)) {
			found = true
			continue
		}
		kept = append(kept, j)
	}
	out.Jurisdictions = kept
	return out, found
}

// --- YAML ---

// LoadYAML decodes and validates a catalog.
func LoadYAML(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, errors.New("catalog: empty document")
		}
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// WriteYAML encodes c.
func (c Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

func cloneJurisdiction(j rules.Jurisdiction) rules.Jurisdiction {
	j.Requirements = append([]rules.Requirement(nil), j.Requirements...)
	for i := range j.Requirements {
		j.Requirements[i].Labels = append([]string(nil), j.Requirements[i].Labels...)
	}
	j.Conflicts = append([]rules.Conflict(nil), j.Conflicts...)
	return j
}
