package pathsafe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePackageDirRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	_, err := ResolvePackageDir(root, "../../etc/passwd")
	require.Error(t, err)
}

func TestResolvePackageDirRejectsNullByte(t *testing.T) {
	root := t.TempDir()
	_, err := ResolvePackageDir(root, "left-pad\x00evil")
	require.Error(t, err)
}

func TestResolvePackageDirAcceptsScopedName(t *testing.T) {
	root := t.TempDir()
	got, err := ResolvePackageDir(root, "@scope/pkg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "@scope", "pkg"), got)
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/a/b", "/a/b"))
	assert.True(t, IsWithin("/a/b", "/a/b/c"))
	assert.False(t, IsWithin("/a/b", "/a/c"))
	assert.False(t, IsWithin("/a/b", "/a/b/../c"))
}
