package connector

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTarThenExtractTarStreamRewritesPaths(t *testing.T) {
	srcRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "b", "c"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "b", "file.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "b", "c", "nested.txt"), []byte("world"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteTar(&buf, filepath.Join(srcRoot, "b"), "/a/b"))

	dst := t.TempDir()
	require.NoError(t, ExtractTarStream(&buf, "/a/b", dst))

	// Every member lands relative to src's basename "b", flattened directly
	// under dst: the root member becomes the (otherwise empty) dst/b, and
	// its children are dst's direct children, not nested under dst/b.
	info, err := os.Stat(filepath.Join(dst, "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	rootContent, err := os.ReadFile(filepath.Join(dst, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(rootContent))

	nestedContent, err := os.ReadFile(filepath.Join(dst, "c", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(nestedContent))
}

func TestExtractTarStreamSingleFileIntoNonDirectoryDst(t *testing.T) {
	var buf bytes.Buffer
	srcRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "file.txt"), []byte("payload"), 0o644))
	require.NoError(t, WriteTar(&buf, filepath.Join(srcRoot, "file.txt"), "/a/file.txt"))

	dst := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, ExtractTarStream(&buf, "/a/file.txt", dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}
