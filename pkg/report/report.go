// Package report implements the JSON/YAML/CSV/console report writers
// (spec.md §6 "Report formats"). Grounded on
// _examples/original_source/src/report.rs's Reporter/ReportContext shape:
// filter by minimum severity and cache-freshness, plus one writer per
// format. The CLI calls the writers in the order the formats were
// requested.
package report

import (
	"github.com/drodil/depspector/pkg/types"
)

// Format names accepted by the CLI's repeatable --format flag.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCSV     = "csv"
	FormatConsole = "console"
)

// Options controls report filtering and console rendering, mirroring
// ReportContext in original_source/src/report.rs.
type Options struct {
	MinSeverity    types.Severity
	OnlyNew        bool // when true, drop results with IsFromCache == true
	UnusedIgnores  []string
	NoColor        bool
}

// Filter applies the severity and freshness filters of §6: a result
// survives if (not OnlyNew, or it is not from cache) and it has at least
// one issue at or above MinSeverity.
func Filter(results []types.AnalysisResult, opts Options) []types.AnalysisResult {
	out := make([]types.AnalysisResult, 0, len(results))
	for _, r := range results {
		if opts.OnlyNew && r.IsFromCache {
			continue
		}
		if !hasIssueAtLevel(r.Issues, opts.MinSeverity) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasIssueAtLevel(issues []types.Issue, min types.Severity) bool {
	for _, i := range issues {
		if i.Severity >= min {
			return true
		}
	}
	return false
}

// HasIssuesAtLevel reports whether any result has an issue at or above
// the named level, used by the CLI to decide the process exit code (§7).
func HasIssuesAtLevel(results []types.AnalysisResult, level string) bool {
	min := types.ParseSeverity(level)
	for _, r := range results {
		if hasIssueAtLevel(r.Issues, min) {
			return true
		}
	}
	return false
}

// MostUntrusted returns the n results with the lowest trust scores,
// ascending, for the console reporter's "most untrusted" section (§4.12).
func MostUntrusted(results []types.AnalysisResult, n int) []types.AnalysisResult {
	sorted := make([]types.AnalysisResult, len(results))
	copy(sorted, results)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].TrustScore.Score > sorted[j].TrustScore.Score; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
