package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/exportsafe/lcaudit/internal/domain"
)

// Extractor turns raw document text into ExtractedFields. It holds only
// compiled patterns and is safe for concurrent use.
type Extractor struct {
	specs []compiledSpec
}

type compiledSpec struct {
	name     domain.FieldName
	kind     domain.ValueKind
	label    *regexp.Regexp
	mentions []*regexp.Regexp
}

// labelLine matches "<label>: value" or "<label> = value", optionally
// preceded by an item number ("1.", "2)") and followed by a parenthesised note.
const labelLine = `(?i)^\s*(?:\d{1,2}[.)]\s*)?(?:%s)\s*(?:\([^)\n]*\))?\s*[:=]\s*(.*?)\s*$`

// looksLikeLabel detects a following line that starts a new "Label:" entry.
var looksLikeLabel = regexp.MustCompile(`^\s*[A-Za-z:][A-Za-z0-9 /.#()&-]{0,40}\s*[:=]`)

var (
	lcExtractor      = mustExtractor(lcSpecs)
	invoiceExtractor = mustExtractor(invoiceSpecs)
)

// NewLCExtractor returns the extractor for Letter of Credit text.
func NewLCExtractor() *Extractor {
	return lcExtractor
}

// NewInvoiceExtractor returns the extractor for commercial invoice text.
// Extra specs add fields (for example jurisdiction identifiers loaded from the
// rule catalog); a spec reusing a built-in name replaces the built-in one.
func NewInvoiceExtractor(extra ...FieldSpec) (*Extractor, error) {
	if len(extra) == 0 {
		return invoiceExtractor, nil
	}
	return New(mergeSpecs(invoiceSpecs, extra))
}

// New compiles an extractor from specs.
func New(specs []FieldSpec) (*Extractor, error) {
	e := &Extractor{specs: make([]compiledSpec, 0, len(specs))}
	for _, s := range specs {
		cs, err := compileSpec(s)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", s.Name, err)
		}
		e.specs = append(e.specs, cs)
	}
	return e, nil
}

// Fields lists the field names this extractor can produce.
func (e *Extractor) Fields() []domain.FieldName {
	names := make([]domain.FieldName, len(e.specs))
	for i, s := range e.specs {
		names[i] = s.name
	}
	return names
}

// Extract captures every field independently. A field that cannot be found
// or parsed is absent; it never affects the other fields.
func (e *Extractor) Extract(text string) domain.ExtractedFields {
	lines := splitLines(text)
	values := make(map[domain.FieldName]domain.FieldValue, len(e.specs))
	for _, s := range e.specs {
		if v := s.extract(lines); v.Present() || v.Unparsed() {
			values[s.name] = v
		}
	}
	return domain.NewExtractedFields(values)
}

func (s compiledSpec) extract(lines []string) (v domain.FieldValue) {
	defer func() {
		if r := recover(); r != nil {
			v = domain.Absent()
		}
	}()

	raw, ok := s.find(lines)
	if !ok {
		return domain.Absent()
	}
	return parseValue(s.name, s.kind, raw)
}

// find returns the value of the first labelled line, falling back to the
// first line that mentions the field.
func (s compiledSpec) find(lines []string) (string, bool) {
	for i, line := range lines {
		m := s.label.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if val := cleanValue(m[1]); val != "" {
			return val, true
		}
		// Value on the following line: "Beneficiary:\nACME EXPORTS".
		for _, next := range lines[i+1:] {
			if strings.TrimSpace(next) == "" {
				continue
			}
			if looksLikeLabel.MatchString(next) {
				break
			}
			return cleanValue(next), true
		}
	}

	for _, re := range s.mentions {
		for _, line := range lines {
			if re.MatchString(line) {
				return cleanValue(line), true
			}
		}
	}
	return "", false
}

// --- helpers ---

func mustExtractor(specs []FieldSpec) *Extractor {
	e, err := New(specs)
	if err != nil {
		panic(err)
	}
	return e
}

func compileSpec(s FieldSpec) (compiledSpec, error) {
	if s.Name == "" {
		return compiledSpec{}, fmt.Errorf("field name is required")
	}
	if len(s.Labels) == 0 && len(s.Mentions) == 0 {
		return compiledSpec{}, fmt.Errorf("at least one label or mention is required")
	}

	kind := s.Kind
	if kind == "" {
		kind = domain.KindText
	}
	cs := compiledSpec{name: s.Name, kind: kind}

	labels := s.Labels
	if len(labels) == 0 {
		// A pattern that never matches keeps find() uniform for mention-only specs.
		labels = []string{`[^\x00-\x{10FFFF}]`}
	}
	re, err := regexp.Compile(fmt.Sprintf(labelLine, strings.Join(labels, "|")))
	if err != nil {
		return compiledSpec{}, fmt.Errorf("label pattern: %w", err)
	}
	cs.label = re

	for _, m := range s.Mentions {
		mre, err := regexp.Compile(`(?i)` + m)
		if err != nil {
			return compiledSpec{}, fmt.Errorf("mention pattern %q: %w", m, err)
		}
		cs.mentions = append(cs.mentions, mre)
	}
	return cs, nil
}

func mergeSpecs(base, extra []FieldSpec) []FieldSpec {
	out := make([]FieldSpec, 0, len(base)+len(extra))
	replaced := make(map[domain.FieldName]FieldSpec, len(extra))
	for _, s := range extra {
		replaced[s.Name] = s
	}
	for _, s := range base {
		if r, ok := replaced[s.Name]; ok {
			out = append(out, r)
			delete(replaced, s.Name)
			continue
		}
		out = append(out, s)
	}
	for _, s := range extra {
		if _, ok := replaced[s.Name]; ok {
			out = append(out, s)
			delete(replaced, s.Name)
		}
	}
	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// cleanValue collapses whitespace and drops trailing separators.
func cleanValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, " ;,")
}
