package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/pkg/types"
)

func sampleResults() []types.AnalysisResult {
	return []types.AnalysisResult{
		{
			Package: "left-pad", Version: "1.0.0", PackagePath: "/nm/left-pad",
			Issues:     []types.Issue{{ID: "A", Severity: types.SeverityHigh, IssueType: "eval", Message: "eval detected"}},
			TrustScore: types.TrustScore{Score: 40},
		},
		{
			Package: "chalk", Version: "2.0.0", PackagePath: "/nm/chalk",
			Issues:     []types.Issue{{ID: "B", Severity: types.SeverityLow, IssueType: "minified", Message: "long line"}},
			TrustScore: types.TrustScore{Score: 95},
		},
		{
			Package: "cached-pkg", Version: "1.0.0", PackagePath: "/nm/cached-pkg",
			Issues:      []types.Issue{{ID: "C", Severity: types.SeverityCritical, IssueType: "secrets", Message: "aws key"}},
			TrustScore:  types.TrustScore{Score: 10},
			IsFromCache: true,
		},
	}
}

func TestFilterBySeverity(t *testing.T) {
	results := sampleResults()
	filtered := Filter(results, Options{MinSeverity: types.SeverityHigh})
	assert.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.NotEqual(t, "chalk", r.Package)
	}
}

func TestFilterOnlyNew(t *testing.T) {
	results := sampleResults()
	filtered := Filter(results, Options{MinSeverity: types.SeverityLow, OnlyNew: true})
	for _, r := range filtered {
		assert.False(t, r.IsFromCache)
	}
	assert.Len(t, filtered, 2)
}

func TestHasIssuesAtLevel(t *testing.T) {
	results := sampleResults()
	assert.True(t, HasIssuesAtLevel(results, "critical"))
	assert.False(t, HasIssuesAtLevel(results[:2], "critical"))
}

func TestMostUntrustedOrdersAscending(t *testing.T) {
	results := sampleResults()
	untrusted := MostUntrusted(results, 2)
	require.Len(t, untrusted, 2)
	assert.Equal(t, "cached-pkg", untrusted[0].Package)
	assert.Equal(t, "left-pad", untrusted[1].Package)
}

func TestWriteJSONSerializesEnumsAsStrings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteJSON(sampleResults(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dependencyType"`)
	assert.Contains(t, string(data), `"Critical"`)
}

func TestWriteCSVHasHeaderAndOneRowPerIssue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteCSV(sampleResults(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package,file,line,severity,type,message,code,id")
	assert.Contains(t, string(data), "left-pad")
}
