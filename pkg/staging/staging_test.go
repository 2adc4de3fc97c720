package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageBytes(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)

	staged, err := stager.StageBytes([]byte("hello"), "photo.jpg")
	require.NoError(t, err)

	assert.Equal(t, "photo.jpg", staged.Filename)
	assert.Equal(t, int64(5), staged.Size)
	assert.Equal(t, ".jpg", filepath.Ext(staged.Path))

	content, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestStageBytes_UniqueNames(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)

	a, err := stager.StageBytes([]byte("one"), "photo.jpg")
	require.NoError(t, err)
	b, err := stager.StageBytes([]byte("two"), "photo.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
}

func TestStageReader(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)

	staged, err := stager.StageReader(strings.NewReader("stream content"), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, int64(len("stream content")), staged.Size)

	content, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "stream content", string(content))
}

func TestRelease(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)

	staged, err := stager.StageBytes([]byte("x"), "a.txt")
	require.NoError(t, err)

	stager.Release(staged)
	_, err = os.Stat(staged.Path)
	assert.True(t, os.IsNotExist(err))

	// A second release of the same file is a no-op.
	stager.Release(staged)
	stager.Release(nil)
}

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	stager, err := NewStager(root)
	require.NoError(t, err)

	path, err := stager.EnsureDir("field_12")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "field_12"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	again, err := stager.EnsureDir("field_12")
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestNewStager_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "staging")
	stager, err := NewStager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, stager.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
