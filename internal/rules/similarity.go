package rules

import "sort"

// Comparison describes how two goods descriptions relate after normalization.
type Comparison struct {
	Equal        bool    `json:"equal"`
	Similarity   float64 `json:"similarity"`
	Overlap      float64 `json:"overlap"`
	OrderChanged bool    `json:"order_changed"`
}

// CompareDescriptions normalizes a and b and measures them. Similarity is
// 2*LCS/(len(a)+len(b)) over runes; Overlap is |A∩B|/max(|A|,|B|) over word
// sets. Both are symmetric in a and b.
func CompareDescriptions(a, b string) Comparison {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return Comparison{Equal: true, Similarity: 1, Overlap: 1}
	}

	wa, wb := words(na), words(nb)
	return Comparison{
		Similarity:   lcsRatio([]rune(na), []rune(nb)),
		Overlap:      wordOverlap(wa, wb),
		OrderChanged: sameMultiset(wa, wb),
	}
}

func lcsRatio(a, b []rune) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	return 2 * float64(lcsLength(a, b)) / float64(len(a)+len(b))
}

// lcsLength is the classic dynamic program kept to two rows.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func wordOverlap(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	common := 0
	for w := range setA {
		if setB[w] {
			common++
		}
	}
	return float64(common) / float64(max(len(setA), len(setB)))
}

// sameMultiset reports whether a and b hold the same words in any order.
// Callers only use it for descriptions already known to differ.
func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func toSet(ws []string) map[string]bool {
	m := make(map[string]bool, len(ws))
	for _, w := range ws {
		m[w] = true
	}
	return m
}
