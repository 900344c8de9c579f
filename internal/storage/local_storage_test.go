package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	// Sprawdź, czy katalog został utworzony
	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")
}

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	key := "aBtestToken1234567890abcdefghijk"
	content := "not really a jpeg"

	err = storage.Save(ctx, key, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	// Plik powinien istnieć w podkatalogu z dwóch pierwszych znaków klucza
	expectedPath := storage.getPathFromKey(key)
	require.Contains(t, expectedPath, string(os.PathSeparator)+"aB"+string(os.PathSeparator))
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "File should exist after save")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	readCloser, err := storage.Open(ctx, key)
	require.NoError(t, err)

	retrievedContent, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrievedContent))

	err = storage.Delete(ctx, key)
	require.NoError(t, err)

	_, err = os.Stat(expectedPath)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err), "File should not exist after delete")
}

func TestLocalStorage_OpenNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Open(context.Background(), "nonExistentKey0000000000000000aa")
	require.Error(t, err)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	// Usunięcie nieistniejącego pliku nie powinno zwracać błędu
	err = storage.Delete(context.Background(), "nonExistentKey0000000000000000aa")
	require.NoError(t, err)
}

func TestLocalStorage_SaveWithLargeData(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	key := "largeBlobKey00000000000000000000"
	largeContent := make([]byte, 1024*1024)
	for i := range largeContent {
		largeContent[i] = 'a'
	}

	err = storage.Save(context.Background(), key, bytes.NewReader(largeContent), int64(len(largeContent)))
	require.NoError(t, err)

	fileInfo, err := os.Stat(storage.getPathFromKey(key))
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), fileInfo.Size())
}
