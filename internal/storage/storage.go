// Package storage holds the binary payloads behind image and thumbnail
// records. The database keeps only the storage key; durability is this
// package's problem.
package storage

import (
	"context"
	"io"
)

// BlobStore is the write/read surface the upload and retrieval paths use.
// Implementations: LocalStorage (disk) and MinioStorage (S3-compatible).
type BlobStore interface {
	Save(ctx context.Context, key string, data io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
