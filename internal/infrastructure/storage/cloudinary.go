package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"theralink/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrStorageNotConfigured = errors.New("object storage is not configured")

// FileStorage stores user uploads and returns a public https URL.
type FileStorage interface {
	UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error)
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cfg config.StorageConfig) (FileStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrStorageNotConfigured
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &cloudinaryStorage{cld: cld, folder: cfg.Folder}, nil
}

// UploadAvatar overwrites the user's previous avatar by reusing the public id.
func (s *cloudinaryStorage) UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     userID,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", errors.New("cloudinary upload: no secure url returned")
	}

	return result.SecureURL, nil
}

type disabledStorage struct{}

// NewDisabledStorage is used when no storage credentials are configured.
func NewDisabledStorage() FileStorage {
	return disabledStorage{}
}

func (disabledStorage) UploadAvatar(context.Context, string, io.Reader) (string, error) {
	return "", ErrStorageNotConfigured
}
