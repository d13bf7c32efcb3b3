package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Content types accepted for event images
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// imageStore validates and downsizes images before handing them to the wrapped Store
type imageStore struct {
	next         Store
	maxDimension int
	maxBytes     int64
}

// NewImageStore wraps next so that only decodable images up to maxBytes are stored,
// scaled down to fit within maxDimension x maxDimension.
func NewImageStore(next Store, maxDimension int, maxBytes int64) *imageStore {
	return &imageStore{
		next:         next,
		maxDimension: maxDimension,
		maxBytes:     maxBytes,
	}
}

// Upload prepares the image and uploads the result
func (s *imageStore) Upload(ctx context.Context, r io.Reader, meta UploadMetadata) (*Asset, error) {
	data, contentType, err := s.prepare(r)
	if err != nil {
		return nil, err
	}
	return s.next.Upload(ctx, bytes.NewReader(data), UploadMetadata{
		Filename:    meta.Filename,
		ContentType: contentType,
	})
}

// Delete delegates to the wrapped store
func (s *imageStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

// prepare reads the upload, checks it is a supported image and resizes it when needed.
// It returns the bytes to store and their content type.
func (s *imageStore) prepare(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidImage, s.maxBytes)
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, "", fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, contentType)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= s.maxDimension && bounds.Dy() <= s.maxDimension {
		return data, contentType, nil
	}

	resized := imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)

	// WebP cannot be encoded by imaging, so it is re-encoded as JPEG
	format, outType := imaging.JPEG, "image/jpeg"
	switch contentType {
	case "image/png":
		format, outType = imaging.PNG, "image/png"
	case "image/gif":
		format, outType = imaging.GIF, "image/gif"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), outType, nil
}
