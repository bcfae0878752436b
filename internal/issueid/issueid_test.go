package issueid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackagePrefix(t *testing.T) {
	cases := map[string]string{
		"":                "unknown",
		"lodash":          "lodash",
		"@scope/pkg-name": "scope-pk",
		"left-pad":        "left-pad",
	}
	for in, want := range cases {
		assert.Equal(t, want, PackagePrefix(in))
	}
}

func TestNormalizePathStripsNodeModulesAndDist(t *testing.T) {
	path := "/home/user/project/node_modules/left-pad/dist-node/index.js"
	got := NormalizePath(path, "left-pad")
	assert.Equal(t, "index.js", got)
}

func TestNormalizePathScoped(t *testing.T) {
	path := "/home/user/project/node_modules/@scope/pkg/lib/index.js"
	got := NormalizePath(path, "@scope/pkg")
	assert.Equal(t, "index.js", got)
}

func TestLineBucketing(t *testing.T) {
	assert.Equal(t, 60, LineBucket(65))
	assert.Equal(t, 60, LineBucket(70))
	assert.Equal(t, 60, LineBucket(79))
	assert.Equal(t, 80, LineBucket(80))
}

func TestGenerateStableAcrossDistFolders(t *testing.T) {
	base := "/proj/node_modules/left-pad/%s/index.js"
	id1 := Generate("secrets", "left-pad", sprintfPath(base, "dist-node"), 67, "hardcoded secret found")
	id2 := Generate("secrets", "left-pad", sprintfPath(base, "dist-src"), 65, "hardcoded secret found")
	id3 := Generate("secrets", "left-pad", sprintfPath(base, "dist-web"), 71, "hardcoded secret found")
	require.Equal(t, id1, id2)
	require.Equal(t, id2, id3)
}

func TestGenerateLineBucketBoundary(t *testing.T) {
	path := "/proj/node_modules/pkg/index.js"
	a := Generate("secrets", "pkg", path, 65, "msg")
	b := Generate("secrets", "pkg", path, 79, "msg")
	c := Generate("secrets", "pkg", path, 80, "msg")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateIsDeterministic(t *testing.T) {
	id1 := Generate("eval", "pkg", "/a/node_modules/pkg/x.js", 10, "eval used here")
	id2 := Generate("eval", "pkg", "/a/node_modules/pkg/x.js", 10, "eval used here")
	assert.Equal(t, id1, id2)
}

func TestMatchesIgnoreExactAndPrefix(t *testing.T) {
	id := "LODASH-SECRETS-AB12CD"
	assert.True(t, MatchesIgnore(id, id))
	assert.True(t, MatchesIgnore(id, "LODASH-SECRETS-FFFFFF"))
	assert.False(t, MatchesIgnore(id, "LODASH-EVAL-AB12CD"))
}

func sprintfPath(format, dir string) string {
	out := make([]byte, 0, len(format))
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) && format[i+1] == 's' {
			out = append(out, dir...)
			i++
			continue
		}
		out = append(out, format[i])
	}
	return string(out)
}
