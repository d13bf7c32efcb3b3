package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Destroy results reported by Cloudinary
const (
	destroyResultOK       = "ok"
	destroyResultNotFound = "not found"
)

// cloudinaryAPI is the subset of the Cloudinary upload API used by the store
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// cloudinaryStore implements Store on top of Cloudinary.
// Keys are Cloudinary public IDs.
type cloudinaryStore struct {
	api    cloudinaryAPI
	folder string
}

// NewCloudinaryStore creates a Cloudinary-backed store that uploads into folder
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*cloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &cloudinaryStore{
		api:    &cld.Upload,
		folder: folder,
	}, nil
}

// Upload sends r to Cloudinary and returns its secure URL and public ID
func (s *cloudinaryStore) Upload(ctx context.Context, r io.Reader, meta UploadMetadata) (*Asset, error) {
	result, err := s.api.Upload(ctx, r, uploader.UploadParams{
		Folder: s.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.PublicID == "" || result.SecureURL == "" {
		return nil, errors.New("cloudinary returned an empty upload result")
	}

	return &Asset{
		URL: result.SecureURL,
		Key: result.PublicID,
	}, nil
}

// Delete destroys the asset with the given public ID.
// An asset Cloudinary no longer knows about counts as deleted.
func (s *cloudinaryStore) Delete(ctx context.Context, key string) error {
	result, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete: %s", result.Error.Message)
	}

	switch result.Result {
	case destroyResultOK, destroyResultNotFound:
		return nil
	default:
		return fmt.Errorf("unexpected cloudinary destroy result %q", result.Result)
	}
}
