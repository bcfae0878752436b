// Package trust computes the per-package trust score (C9): a logarithmic
// penalty per severity tier, so a large count of low-severity noise findings
// doesn't crater the score the way a linear accumulation would.
package trust

import (
	"math"

	"github.com/drodil/depspector/pkg/types"
)

const (
	baseCritical = 15.0
	baseHigh     = 8.0
	baseMedium   = 3.0
	baseLow      = 1.0
)

func penalty(count int, base float64) float64 {
	if count == 0 {
		return 0
	}
	return math.Log(1+float64(count)) * base * 3
}

// Score computes the TrustScore for a set of issues.
func Score(issues []types.Issue) types.TrustScore {
	var t types.TrustScore
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityCritical:
			t.CriticalCount++
		case types.SeverityHigh:
			t.HighCount++
		case types.SeverityMedium:
			t.MediumCount++
		default:
			t.LowCount++
		}
	}

	total := penalty(t.CriticalCount, baseCritical) +
		penalty(t.HighCount, baseHigh) +
		penalty(t.MediumCount, baseMedium) +
		penalty(t.LowCount, baseLow)

	score := 100 - total
	if score < 0 {
		score = 0
	}
	t.Score = score
	return t
}
