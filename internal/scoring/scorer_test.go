package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportsafe/lcaudit/internal/domain"
)

func disc(s domain.Severity) domain.Discrepancy {
	return domain.Discrepancy{Severity: s, Category: domain.CategoryMath}
}

func TestScoreWeights(t *testing.T) {
	ds := []domain.Discrepancy{
		disc(domain.SeverityCritical),
		disc(domain.SeverityMajor),
		disc(domain.SeverityMinor),
	}
	assert.Equal(t, 50, Score(Forensic, ds))
	assert.Equal(t, 70, Score(Basic, ds))
	assert.Equal(t, 0, Score(Forensic, nil))
}

func TestScoreIsCapped(t *testing.T) {
	ds := make([]domain.Discrepancy, 5)
	for i := range ds {
		ds[i] = disc(domain.SeverityCritical)
	}
	assert.Equal(t, MaxScore, Score(Forensic, ds))
	assert.Equal(t, MaxScore, Score(Basic, ds))
}

func TestScoreIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, p := range []Profile{Forensic, Basic} {
		var ds []domain.Discrepancy
		prev := Score(p, ds)
		for i := 0; i < 40; i++ {
			ds = append(ds, disc(domain.Severities[rng.Intn(len(domain.Severities))]))
			cur := Score(p, ds)
			assert.GreaterOrEqual(t, cur, prev, "profile %s step %d", p.Name, i)
			assert.LessOrEqual(t, cur, MaxScore)
			prev = cur
		}
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	ds := []domain.Discrepancy{
		disc(domain.SeverityMinor),
		disc(domain.SeverityCritical),
		disc(domain.SeverityMajor),
		disc(domain.SeverityMinor),
	}
	want := Score(Forensic, ds)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(ds), func(a, b int) { ds[a], ds[b] = ds[b], ds[a] })
		assert.Equal(t, want, Score(Forensic, ds))
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskCompliant},
		{1, domain.RiskLow},
		{20, domain.RiskLow},
		{21, domain.RiskMedium},
		{40, domain.RiskMedium},
		{41, domain.RiskHigh},
		{70, domain.RiskHigh},
		{71, domain.RiskCritical},
		{100, domain.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.score), "score %d", tt.score)
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPass, Status(0, false))
	assert.Equal(t, domain.StatusPass, Status(50, false))
	assert.Equal(t, domain.StatusFail, Status(51, false))
	assert.Equal(t, domain.StatusFail, Status(30, true))
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		critical bool
		want     string
	}{
		{"critical wins", 5, true, RecommendRejectCritical},
		{"clean", 0, false, RecommendApprove},
		{"minor", 15, false, RecommendApproveWithCaution},
		{"moderate", 30, false, RecommendReview},
		{"significant", 60, false, RecommendAmend},
		{"high", 90, false, RecommendRejectHighRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommendation(tt.score, tt.critical))
		})
	}
}

func TestProfiles(t *testing.T) {
	p, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, ProfileForensic, p.Name)

	p, err = Lookup(" BASIC ")
	require.NoError(t, err)
	assert.Equal(t, ProfileBasic, p.Name)
	assert.Equal(t, "HIGH", p.Label(domain.SeverityMajor))
	assert.Equal(t, "MEDIUM", p.Label(domain.SeverityMinor))
	assert.Equal(t, 5, p.Weights["LOW"], "LOW stays in the basic vocabulary")

	_, err = Lookup("lenient")
	assert.ErrorIs(t, err, ErrUnknownProfile)

	assert.Equal(t, []string{ProfileBasic, ProfileForensic}, Names())
}

func TestEvaluate(t *testing.T) {
	r := Evaluate(Forensic, []domain.Discrepancy{disc(domain.SeverityMajor)})
	assert.Equal(t, Result{
		Score:          15,
		Level:          domain.RiskLow,
		Status:         domain.StatusPass,
		Recommendation: RecommendApproveWithCaution,
	}, r)

	r = Evaluate(Forensic, []domain.Discrepancy{disc(domain.SeverityCritical)})
	assert.Equal(t, domain.StatusFail, r.Status)
	assert.Equal(t, 30, r.Score)
	assert.Equal(t, RecommendRejectCritical, r.Recommendation)
}
