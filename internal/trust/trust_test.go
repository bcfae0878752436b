package trust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drodil/depspector/pkg/types"
)

func issuesOf(sev types.Severity, n int) []types.Issue {
	issues := make([]types.Issue, n)
	for i := range issues {
		issues[i] = types.Issue{Severity: sev}
	}
	return issues
}

func TestScoreEmptyIssuesIsPerfect(t *testing.T) {
	score := Score(nil)
	assert.Equal(t, float64(100), score.Score)
	assert.Zero(t, score.CriticalCount)
}

func TestScoreCountsBySeverity(t *testing.T) {
	issues := append(issuesOf(types.SeverityCritical, 2), issuesOf(types.SeverityLow, 3)...)
	score := Score(issues)
	assert.Equal(t, 2, score.CriticalCount)
	assert.Equal(t, 3, score.LowCount)
	assert.Less(t, score.Score, float64(100))
}

func TestScoreIsNonIncreasingAsIssuesAreAdded(t *testing.T) {
	base := Score(issuesOf(types.SeverityMedium, 1)).Score
	for n := 2; n <= 10; n++ {
		next := Score(issuesOf(types.SeverityMedium, n)).Score
		assert.LessOrEqual(t, next, base, "score must not increase when adding issues")
		base = next
	}
}

func TestScoreNeverGoesNegative(t *testing.T) {
	score := Score(issuesOf(types.SeverityCritical, 10000))
	assert.Equal(t, float64(0), score.Score)
}

func TestScoreMatchesLogFormula(t *testing.T) {
	score := Score(issuesOf(types.SeverityHigh, 4))
	expected := 100 - math.Log(1+4)*baseHigh*3
	assert.InDelta(t, expected, score.Score, 1e-9)
}
