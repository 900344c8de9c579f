package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Keys are random tokens, so the first two characters fan files out evenly
// across subdirectories.
func (ls *LocalStorage) getPathFromKey(key string) string {
	if len(key) < 2 {
		return filepath.Join(ls.basePath, key)
	}
	return filepath.Join(ls.basePath, key[:2], key[2:])
}

func (ls *LocalStorage) Save(ctx context.Context, key string, data io.Reader, size int64) error {
	filePath := ls.getPathFromKey(key)

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath := ls.getPathFromKey(key)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob with key %s not found: %w", key, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(ls.getPathFromKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
