package hostio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestVFS_LongestPrefixWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "short.txt"), []byte("short"), 0o644))

	nested := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(nested, "long.txt"), []byte("long"), 0o644))

	v := NewVFS()
	v.Mount("/data", root)
	v.Mount("/data/sub", nested)

	fs, rel, err := v.Resolve("/data/sub/long.txt")
	require.NoError(t, err)
	require.Equal(t, "/long.txt", rel)
	b, err := afero.ReadFile(fs, rel)
	require.NoError(t, err)
	require.Equal(t, "long", string(b))
}

// TestVFS_PathEscapeRejected exercises P7: a guest path attempting to
// climb above its mount root is rejected rather than resolved.
func TestVFS_PathEscapeRejected(t *testing.T) {
	root := t.TempDir()
	v := NewVFS()
	v.Mount("/data", root)

	_, _, err := v.Resolve("/data/../../etc/passwd")
	require.ErrorIs(t, err, ErrPathEscape)
}

func TestVFS_UnmatchedPathFails(t *testing.T) {
	v := NewVFS()
	v.Mount("/data", t.TempDir())

	_, _, err := v.Resolve("/other/file.txt")
	require.Error(t, err)
}
