// Package storage implements the asset store that holds event images.
//
// Every implementation satisfies Store: Upload returns the public URL and the
// stable key of the stored asset, and Delete is idempotent, so deleting a key
// that no longer exists is not an error.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidImage is returned when an upload is not an acceptable image
var ErrInvalidImage = errors.New("invalid image")

// Asset identifies a stored file
type Asset struct {
	URL string
	Key string
}

// UploadMetadata describes the file being uploaded
type UploadMetadata struct {
	Filename    string
	ContentType string
}

// Store uploads and deletes assets
type Store interface {
	Upload(ctx context.Context, r io.Reader, meta UploadMetadata) (*Asset, error)
	Delete(ctx context.Context, key string) error
}
