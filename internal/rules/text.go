package rules

import (
	"strings"
	"unicode"
)

// normalize case-folds s, turns punctuation into spaces and collapses runs of
// whitespace.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func words(s string) []string {
	return strings.Fields(normalize(s))
}

// containsPhrase reports whether the normalized phrase occurs in text on
// word boundaries.
func containsPhrase(text, phrase string) bool {
	t, p := normalize(text), normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+t+" ", " "+p+" ")
}

// correspond reports whether two names or places refer to the same thing:
// equal after normalization, or one contained in the other on word boundaries.
func correspond(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || containsPhrase(na, nb) || containsPhrase(nb, na)
}
