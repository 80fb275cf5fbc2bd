package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_MoveCreatesMissingParents(t *testing.T) {
	tmpRoot := t.TempDir()
	outRoot := filepath.Join(t.TempDir(), "data", "out")

	artifact := filepath.Join(tmpRoot, "20230101_120000", "scene_20230101_120000.tif")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
	require.NoError(t, os.WriteFile(artifact, []byte("cog"), 0644))

	store := &LocalStorage{BasePath: outRoot}
	dest, err := store.Move(artifact, tmpRoot)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outRoot, "20230101_120000", "scene_20230101_120000.tif"), dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "cog", string(data))
	assert.NoFileExists(t, artifact)
}

func TestLocalStorage_MoveOverwritesExisting(t *testing.T) {
	tmpRoot, outRoot := t.TempDir(), t.TempDir()

	artifact := filepath.Join(tmpRoot, "20230101_120000", "a.tif")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
	require.NoError(t, os.WriteFile(artifact, []byte("new"), 0644))

	existing := filepath.Join(outRoot, "20230101_120000", "a.tif")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	_, err := (&LocalStorage{BasePath: outRoot}).Move(artifact, tmpRoot)
	require.NoError(t, err)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalStorage_MoveRejectsOutsideTemp(t *testing.T) {
	tmpRoot := t.TempDir()
	other := filepath.Join(t.TempDir(), "x.tif")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	_, err := (&LocalStorage{BasePath: t.TempDir()}).Move(other, tmpRoot)
	assert.ErrorIs(t, err, ErrOutsideTempDir)
	assert.FileExists(t, other)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, copyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
