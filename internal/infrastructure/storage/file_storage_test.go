package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRemove(t *testing.T) {
	baseDir := t.TempDir()
	storage := NewLocalFileStorage(baseDir, zap.NewNop())

	absPath, err := storage.Save("req-1/receipt.pdf", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "req-1", "receipt.pdf"), absPath)

	content, err := os.ReadFile(absPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), content)

	require.NoError(t, storage.Remove("req-1/receipt.pdf"))
	_, err = os.Stat(absPath)
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is idempotent.
	assert.NoError(t, storage.Remove("req-1/receipt.pdf"))
}

func TestLocalFileStorage_RejectsPathTraversal(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	_, err := storage.Save("../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = storage.AbsolutePath("../../etc/passwd")
	assert.Error(t, err)

	err = storage.Remove("../outside.txt")
	assert.Error(t, err)
}
