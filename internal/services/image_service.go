package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/storage"
)

// IImageService validates uploaded image bytes and persists them under a
// content-addressed reference.
type IImageService interface {
	Ingest(ctx context.Context, data []byte, declaredFilename string) (string, error)
	Remove(ctx context.Context, imageRef string) error
}

// allowedImageTypes maps a sniffed MIME type to the stored file extension.
// The client-declared filename and Content-Type are never consulted for
// trust decisions; only the sniffed bytes matter.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// imageService implements IImageService on top of a BlobStore.
type imageService struct {
	store   storage.BlobStore
	maxSize int64
}

// NewImageService creates a new ImageService. maxSize is the byte cap for a
// single upload.
func NewImageService(store storage.BlobStore, maxSize int64) IImageService {
	return &imageService{store: store, maxSize: maxSize}
}

// Ingest validates the payload and writes it to the blob store under
// assets/img/cars/<sha1-of-bytes>.<ext>. Identical bytes always produce the
// identical reference, so re-uploading the same photo is a no-op overwrite.
func (s *imageService) Ingest(ctx context.Context, data []byte, declaredFilename string) (string, error) {
	if int64(len(data)) > s.maxSize {
		return "", apperr.ErrPayloadTooLarge
	}

	mimeType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		return "", apperr.ErrUnsupportedMedia
	}

	sum := sha1.Sum(data)
	key := fmt.Sprintf("assets/img/cars/%s.%s", hex.EncodeToString(sum[:]), ext)

	if err := s.store.Put(ctx, key, mimeType, data); err != nil {
		return "", err
	}

	return key, nil
}

// Remove deletes a previously ingested blob. Used as compensating cleanup
// when a listing update fails after the bytes were written.
func (s *imageService) Remove(ctx context.Context, imageRef string) error {
	return s.store.Delete(ctx, imageRef)
}
