package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/pkg/types"
)

type fakeGraph struct {
	packages []*types.PackageInfo
}

func (f *fakeGraph) DiscoveredPackages() []*types.PackageInfo { return f.packages }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunAnalyzesPackageAndFindsEvalIssue(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "evil-pkg")
	writeFile(t, filepath.Join(pkgDir, "index.js"), `eval(userInput);`)
	writeFile(t, filepath.Join(pkgDir, "package.json"), `{"name":"evil-pkg","version":"1.0.0"}`)

	graph := &fakeGraph{packages: []*types.PackageInfo{
		{
			Name:           "evil-pkg",
			Version:        "1.0.0",
			AbsolutePath:   pkgDir,
			Manifest:       map[string]interface{}{"name": "evil-pkg", "version": "1.0.0"},
			DependencyType: types.DependencyDirect,
			IsRoot:         false,
		},
	}}

	driver := &Driver{
		Graph:     graph,
		Options:   Options{Offline: true, NoCache: true, Concurrency: 4},
		Benchmark: NewBenchmark(),
	}

	results, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "evil-pkg", result.Package)
	assert.False(t, result.IsFromCache)

	found := false
	for _, issue := range result.Issues {
		if issue.IssueType == "eval" {
			found = true
		}
	}
	assert.True(t, found, "expected an eval issue, got %+v", result.Issues)

	snap := driver.Benchmark.Snapshot()
	assert.Equal(t, 1, snap.TotalPackages)
	assert.GreaterOrEqual(t, snap.TotalFiles, 1)
}

func TestRunRespectsOnlyAnalyzers(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "evil-pkg")
	writeFile(t, filepath.Join(pkgDir, "index.js"), `eval(userInput);`)

	graph := &fakeGraph{packages: []*types.PackageInfo{
		{Name: "evil-pkg", Version: "1.0.0", AbsolutePath: pkgDir, DependencyType: types.DependencyDirect},
	}}

	driver := &Driver{
		Graph:     graph,
		Options:   Options{Offline: true, NoCache: true, OnlyAnalyzers: []string{"secrets"}},
		Benchmark: NewBenchmark(),
	}

	results, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	for _, issue := range results[0].Issues {
		assert.NotEqual(t, "eval", issue.IssueType)
	}
}

func TestRunAppliesIgnorePatternsAndReportsUnused(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "evil-pkg")
	writeFile(t, filepath.Join(pkgDir, "index.js"), `eval(userInput);`)

	graph := &fakeGraph{packages: []*types.PackageInfo{
		{Name: "evil-pkg", Version: "1.0.0", AbsolutePath: pkgDir, DependencyType: types.DependencyDirect},
	}}

	driver := &Driver{
		Graph:     graph,
		Options:   Options{Offline: true, NoCache: true, IgnorePatterns: []string{"EVIL-PKG-EVAL-FFFFFF", "never-matches-anything"}},
		Benchmark: NewBenchmark(),
	}

	results, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Issues, "the logical-prefix pattern must suppress the eval issue regardless of its hash suffix")
	assert.Contains(t, driver.Unused(), "never-matches-anything")
	assert.NotContains(t, driver.Unused(), "EVIL-PKG-EVAL-FFFFFF")
}

func TestRunReturnsFreshResultWhenNothingIsCached(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "clean-pkg")
	writeFile(t, filepath.Join(pkgDir, "index.js"), `module.exports = function() { return 1; };`)

	graph := &fakeGraph{packages: []*types.PackageInfo{
		{Name: "clean-pkg", Version: "1.0.0", AbsolutePath: pkgDir, DependencyType: types.DependencyDirect},
	}}

	driver := &Driver{
		Graph:     graph,
		Options:   Options{Offline: true, NoCache: true},
		Benchmark: NewBenchmark(),
	}

	results, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float64(100), results[0].TrustScore.Score)
}
