package services

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/apperr"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/storage"
)

func newTestImageService(t *testing.T, maxSize int64) (IImageService, string) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	return NewImageService(store, maxSize), dir
}

func encodeTestJPEG(t *testing.T) []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodeTestPNG(t *testing.T) []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageService_IngestJPEG(t *testing.T) {
	svc, dir := newTestImageService(t, 5000000)
	data := encodeTestJPEG(t)

	ref, err := svc.Ingest(context.Background(), data, "photo.jpg")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "assets/img/cars/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	// The blob landed on disk under the returned key.
	stored, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestImageService_ExtensionFollowsContentNotFilename(t *testing.T) {
	svc, _ := newTestImageService(t, 5000000)

	// PNG bytes uploaded under a .jpg name: sniffed content wins.
	ref, err := svc.Ingest(context.Background(), encodeTestPNG(t), "disguised.jpg")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))
}

func TestImageService_IdenticalBytesYieldIdenticalRef(t *testing.T) {
	svc, _ := newTestImageService(t, 5000000)
	data := encodeTestJPEG(t)

	ref1, err := svc.Ingest(context.Background(), data, "first-upload.jpg")
	require.NoError(t, err)
	ref2, err := svc.Ingest(context.Background(), data, "second-upload.jpg")
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)

	// Different bytes get a different key.
	ref3, err := svc.Ingest(context.Background(), encodeTestPNG(t), "other.png")
	require.NoError(t, err)
	assert.NotEqual(t, ref1, ref3)
}

func TestImageService_RejectsOversizedPayload(t *testing.T) {
	svc, _ := newTestImageService(t, 64)

	big := make([]byte, 65)
	_, err := svc.Ingest(context.Background(), big, "huge.jpg")
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)

	// Exactly at the cap is still allowed size-wise; it fails on format
	// instead because zero bytes are not an image.
	_, err = svc.Ingest(context.Background(), make([]byte, 64), "zeroes.jpg")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedMedia)
}

func TestImageService_RejectsNonImageContent(t *testing.T) {
	svc, _ := newTestImageService(t, 5000000)

	// Text bytes named like a photo.
	_, err := svc.Ingest(context.Background(), []byte("#!/bin/sh\nrm -rf /\n"), "photo.jpg")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedMedia)
}

func TestImageService_Remove(t *testing.T) {
	svc, dir := newTestImageService(t, 5000000)
	data := encodeTestJPEG(t)

	ref, err := svc.Ingest(context.Background(), data, "photo.jpg")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(err))
}
