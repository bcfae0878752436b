package resultcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/pkg/types"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	cache, err := Open(dir, "testns")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestNamespaceIsStableAndDistinct(t *testing.T) {
	a := Namespace("/proj/one", "/proj/one/node_modules")
	b := Namespace("/proj/one", "/proj/one/node_modules")
	c := Namespace("/proj/two", "/proj/two/node_modules")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := openTestCache(t)
	entry := Entry{
		Version:      "1.0.0",
		ContentHash:  "abc123",
		Results:      []types.Issue{{ID: "X-EVAL-000001", Analyzer: "eval"}},
		AnalyzersRun: []string{"eval", "secrets"},
		Timestamp:    time.Now(),
	}
	require.NoError(t, cache.Put("left-pad", "1.0.0", entry))

	got, ok := cache.Get("left-pad", "1.0.0")
	require.True(t, ok)
	assert.Equal(t, entry.ContentHash, got.ContentHash)
	assert.Len(t, got.Results, 1)

	_, ok = cache.Get("left-pad", "2.0.0")
	assert.False(t, ok)
}

func TestLookupFreshnessGate(t *testing.T) {
	cache := openTestCache(t)
	entry := Entry{
		Version:      "1.0.0",
		ContentHash:  "hash-a",
		AnalyzersRun: []string{"eval"},
		Timestamp:    time.Now(),
	}
	require.NoError(t, cache.Put("pkg", "1.0.0", entry))

	_, ok := cache.Lookup("pkg", "1.0.0", "hash-a", time.Hour, []string{"eval"})
	assert.True(t, ok)

	_, ok = cache.Lookup("pkg", "1.0.0", "hash-b", time.Hour, []string{"eval"})
	assert.False(t, ok, "content hash mismatch must miss")

	_, ok = cache.Lookup("pkg", "1.0.0", "hash-a", time.Nanosecond, []string{"eval"})
	assert.False(t, ok, "expired entry must miss")
}

func TestLookupAnalyzerCoverageGate(t *testing.T) {
	cache := openTestCache(t)
	entry := Entry{
		Version:      "1.0.0",
		ContentHash:  "hash-a",
		AnalyzersRun: []string{"eval"},
		Timestamp:    time.Now(),
	}
	require.NoError(t, cache.Put("pkg", "1.0.0", entry))

	_, ok := cache.Lookup("pkg", "1.0.0", "hash-a", 0, []string{"eval", "secrets"})
	assert.False(t, ok, "cache entry missing a newly-enabled analyzer must miss")
}

func TestContentHashStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("console.log(2)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("ignored"), 0o644))

	h1, err := ContentHash(dir)
	require.NoError(t, err)
	h2, err := ContentHash(dir)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("console.log(999)"), 0o644))
	h3, err := ContentHash(dir)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
