// Package scoring turns a set of discrepancies into a risk score, level,
// status and recommendation.
package scoring

import "github.com/exportsafe/lcaudit/internal/domain"

const (
	MaxScore = 100

	// failScore is the score above which an audit fails even without a CRITICAL finding.
	failScore = 50
)

// Recommendation texts.
const (
	RecommendRejectCritical     = "REJECT - Critical discrepancies found. Do not proceed."
	RecommendApprove            = "APPROVE - No discrepancies found."
	RecommendApproveWithCaution = "APPROVE - Minor issues found. Proceed with caution."
	RecommendReview             = "REVIEW - Moderate issues found. Requires manual review."
	RecommendAmend              = "REJECT - Significant issues found. Requires amendment."
	RecommendRejectHighRisk     = "REJECT - Critical issues found. Do not proceed."
)

// Score sums the profile weights of ds, capped at MaxScore. The result does
// not depend on the order of ds.
func Score(p Profile, ds []domain.Discrepancy) int {
	total := 0
	for _, d := range ds {
		total += p.Weight(d.Severity)
		if total >= MaxScore {
			return MaxScore
		}
	}
	return total
}

// Level buckets a score: 0 COMPLIANT, 1-20 LOW, 21-40 MEDIUM, 41-70 HIGH, 71-100 CRITICAL.
func Level(score int) domain.RiskLevel {
	switch {
	case score <= 0:
		return domain.RiskCompliant
	case score <= 20:
		return domain.RiskLow
	case score <= 40:
		return domain.RiskMedium
	case score <= 70:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// Status is FAIL when a CRITICAL discrepancy exists or the score exceeds 50.
func Status(score int, hasCritical bool) domain.Status {
	if hasCritical || score > failScore {
		return domain.StatusFail
	}
	return domain.StatusPass
}

// Recommendation derives the reviewer guidance from the score and whether a
// CRITICAL discrepancy exists.
func Recommendation(score int, hasCritical bool) string {
	switch {
	case hasCritical:
		return RecommendRejectCritical
	case score <= 0:
		return RecommendApprove
	case score <= 20:
		return RecommendApproveWithCaution
	case score <= 40:
		return RecommendReview
	case score <= 70:
		return RecommendAmend
	default:
		return RecommendRejectHighRisk
	}
}

// Result is the scored outcome of one ledger.
type Result struct {
	Score          int
	Level          domain.RiskLevel
	Status         domain.Status
	Recommendation string
}

// Evaluate scores ds under p.
func Evaluate(p Profile, ds []domain.Discrepancy) Result {
	score := Score(p, ds)
	hasCritical := false
	for _, d := range ds {
		if d.Severity == domain.SeverityCritical {
			hasCritical = true
			break
		}
	}
	return Result{
		Score:          score,
		Level:          Level(score),
		Status:         Status(score, hasCritical),
		Recommendation: Recommendation(score, hasCritical),
	}
}
