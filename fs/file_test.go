package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("returns file text", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFiles(t, root, map[string]string{"a.md": "line 1\nline 2\n"})

		got, err := fs.ReadFile(filepath.Join(root, "a.md"))

		require.NoError(t, err)
		assert.Equal(t, "line 1\nline 2\n", got)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bom.txt")
		require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFhello"), 0o644))

		got, err := fs.ReadFile(path)

		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("returns ENOTFOUND for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadFile(filepath.Join(t.TempDir(), "missing.md"))

		assert.Equal(t, wikidocu.ENOTFOUND, wikidocu.ErrorCode(err))
	})

	t.Run("returns EUNREADABLE for binary content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "image.md")
		require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o644))

		_, err := fs.ReadFile(path)

		assert.Equal(t, wikidocu.EUNREADABLE, wikidocu.ErrorCode(err))
	})

	t.Run("returns EINVALID for directory", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadFile(t.TempDir())

		assert.Equal(t, wikidocu.EINVALID, wikidocu.ErrorCode(err))
	})
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, fs.IsBinary(nil))
	assert.False(t, fs.IsBinary([]byte("plain text ✓")))
	assert.True(t, fs.IsBinary([]byte{'a', 0x00, 'b'}))
	assert.True(t, fs.IsBinary([]byte{0xff, 0xfe}))
}
