package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/exportsafe/lcaudit/internal/domain"
)

var ErrUnknownProfile = errors.New("unknown scoring profile")

// Profile is a named scoring configuration. Labels maps each canonical
// severity onto the profile's own vocabulary; Weights is keyed by label, so a
// profile may carry labels (such as the basic profile's LOW) that no
// canonical severity maps onto.
type Profile struct {
	Name    string                     `json:"name"`
	Labels  map[domain.Severity]string `json:"labels"`
	Weights map[string]int             `json:"weights"`
}

const (
	ProfileForensic = "forensic"
	ProfileBasic    = "basic"
)

// Forensic is the default profile: CRITICAL=30, MAJOR=15, MINOR=5.
var Forensic = Profile{
	Name: ProfileForensic,
	Labels: map[domain.Severity]string{
		domain.SeverityCritical: "CRITICAL",
		domain.SeverityMajor:    "MAJOR",
		domain.SeverityMinor:    "MINOR",
	},
	Weights: map[string]int{
		"CRITICAL": 30,
		"MAJOR":    15,
		"MINOR":    5,
	},
}

// Basic reproduces the simpler engine: CRITICAL=40, HIGH=20, MEDIUM=10, LOW=5.
var Basic = Profile{
	Name: ProfileBasic,
	Labels: map[domain.Severity]string{
		domain.SeverityCritical: "CRITICAL",
		domain.SeverityMajor:    "HIGH",
		domain.SeverityMinor:    "MEDIUM",
	},
	Weights: map[string]int{
		"CRITICAL": 40,
		"HIGH":     20,
		"MEDIUM":   10,
		"LOW":      5,
	},
}

var profiles = map[string]Profile{
	ProfileForensic: Forensic,
	ProfileBasic:    Basic,
}

// Lookup finds a profile by name, case-insensitively. An empty name selects Forensic.
func Lookup(name string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return Forensic, nil
	}
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Names lists the available profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Label returns the profile's label for s.
func (p Profile) Label(s domain.Severity) string {
	if l, ok := p.Labels[s]; ok {
		return l
	}
	return string(s)
}

// Weight returns the score contribution of one discrepancy of severity s.
func (p Profile) Weight(s domain.Severity) int {
	return p.Weights[p.Label(s)]
}

// IsZero reports whether p is the zero Profile.
func (p Profile) IsZero() bool {
	return p.Name == "" && len(p.Weights) == 0
}
