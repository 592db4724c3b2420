package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/exportsafe/lcaudit/internal/domain"
)

// Correction replaces whole words matching Pattern (a case-insensitive
// regular expression) with Replacement.
type Correction struct {
	Pattern     string `yaml:"pattern" json:"pattern" validate:"required"`
	Replacement string `yaml:"replacement" json:"replacement" validate:"required"`
}

// Corrector applies an ordered list of corrections. The zero value and a nil
// *Corrector leave text unchanged.
type Corrector struct {
	rules []compiledCorrection
}

type compiledCorrection struct {
	re          *regexp.Regexp
	replacement string
}

// NewCorrector compiles corrections in order. Earlier entries run first, so a
// later entry sees the output of the earlier ones.
func NewCorrector(corrections []Correction) (*Corrector, error) {
	c := &Corrector{rules: make([]compiledCorrection, 0, len(corrections))}
	for i, cor := range corrections {
		if strings.TrimSpace(cor.Pattern) == "" {
			return nil, fmt.Errorf("correction %d: empty pattern", i)
		}
		re, err := regexp.Compile(`(?i)\b(?:` + cor.Pattern + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("correction %d (%q): %w", i, cor.Pattern, err)
		}
		c.rules = append(c.rules, compiledCorrection{re: re, replacement: cor.Replacement})
	}
	return c, nil
}

// Len returns the number of corrections.
func (c *Corrector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Apply returns the corrected text and one entry per distinct word replaced.
// The replacement follows the case of the matched word: "BENIFICIARY" becomes
// "BENEFICIARY", "Benificiary" becomes "Beneficiary".
func (c *Corrector) Apply(text string) (string, []domain.AppliedCorrection) {
	if c == nil || len(c.rules) == 0 {
		return text, nil
	}

	var applied []domain.AppliedCorrection
	index := make(map[string]int)

	for _, rule := range c.rules {
		text = rule.re.ReplaceAllStringFunc(text, func(match string) string {
			out := matchCase(match, rule.replacement)
			if out == match {
				return match
			}
			key := strings.ToLower(match) + "\x00" + strings.ToLower(rule.replacement)
			if i, ok := index[key]; ok {
				applied[i].Count++
			} else {
				index[key] = len(applied)
				applied = append(applied, domain.AppliedCorrection{
					Original:    match,
					Replacement: out,
					Count:       1,
				})
			}
			return out
		})
	}
	return text, applied
}

func matchCase(match, replacement string) string {
	switch {
	case isUpper(match):
		return strings.ToUpper(replacement)
	case startsUpper(match):
		r, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(r)) + strings.ToLower(replacement[size:])
	default:
		return strings.ToLower(replacement)
	}
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter && utf8.RuneCountInString(s) > 1
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
