package storage

import (
	"context"
)

// BlobStore abstracts the durable store for uploaded images. Keys are
// relative paths like "assets/img/cars/<sha1>.jpg"; the same key works for
// the local filesystem store and the S3 store, so a listing's image_ref is
// portable between them.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
