// Package ledger accumulates the discrepancies found during one audit run.
package ledger

import "github.com/exportsafe/lcaudit/internal/domain"

// Ledger is an ordered, append-only list of discrepancies. A Ledger belongs
// to exactly one audit invocation and must not be shared between goroutines.
type Ledger struct {
	entries []domain.Discrepancy
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add appends discrepancies in the order given.
func (l *Ledger) Add(ds ...domain.Discrepancy) {
	l.entries = append(l.entries, ds...)
}

// Len returns the number of recorded discrepancies.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// All returns a copy of every discrepancy in insertion order.
func (l *Ledger) All() []domain.Discrepancy {
	return l.filter(func(domain.Discrepancy) bool { return true })
}

// BySeverity returns the discrepancies with exactly the given severity.
func (l *Ledger) BySeverity(s domain.Severity) []domain.Discrepancy {
	return l.filter(func(d domain.Discrepancy) bool { return d.Severity == s })
}

// AtLeast returns the discrepancies at or above min.
func (l *Ledger) AtLeast(min domain.Severity) []domain.Discrepancy {
	return l.filter(func(d domain.Discrepancy) bool { return d.Severity.AtLeast(min) })
}

// ByCategory returns the discrepancies in category c.
func (l *Ledger) ByCategory(c domain.Category) []domain.Discrepancy {
	return l.filter(func(d domain.Discrepancy) bool { return d.Category == c })
}

// ByRule returns the discrepancies emitted by the named rule.
func (l *Ledger) ByRule(rule string) []domain.Discrepancy {
	return l.filter(func(d domain.Discrepancy) bool { return d.Rule == rule })
}

// HasCritical reports whether any CRITICAL discrepancy was recorded.
func (l *Ledger) HasCritical() bool {
	for _, d := range l.entries {
		if d.Severity == domain.SeverityCritical {
			return true
		}
	}
	return false
}

// Breakdown counts the entries by severity and category.
func (l *Ledger) Breakdown() domain.Breakdown {
	b := domain.Breakdown{ByCategory: make(map[domain.Category]int)}
	for _, d := range l.entries {
		switch d.Severity {
		case domain.SeverityCritical:
			b.Critical++
		case domain.SeverityMajor:
			b.Major++
		case domain.SeverityMinor:
			b.Minor++
		}
		b.ByCategory[d.Category]++
		b.Total++
	}
	return b
}

func (l *Ledger) filter(keep func(domain.Discrepancy) bool) []domain.Discrepancy {
	out := make([]domain.Discrepancy, 0, len(l.entries))
	for _, d := range l.entries {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
