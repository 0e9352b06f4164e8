// Package media stores menu images.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"bistro/internal/config"
	"bistro/internal/model"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// MaxImageSize bounds uploaded images.
const MaxImageSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ErrUploadsDisabled is returned when no image store is configured.
var ErrUploadsDisabled = model.NewDomainError(model.ErrCodeValidationFailed, "Image uploads are not configured")

// ImageStore uploads and removes images.
type ImageStore interface {
	// Upload stores r and returns its public URL and provider id.
	Upload(ctx context.Context, r io.Reader, filename string) (url, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// ValidateImage checks the file name and size of an upload.
func ValidateImage(filename string, size int64) error {
	if size > MaxImageSize {
		return model.NewValidationError("File too large (max 10MB)")
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return model.NewValidationError("Invalid file type. Only jpg, jpeg, png, gif, webp allowed")
	}
	return nil
}

// uploaderAPI is satisfied by *uploader.API.
type uploaderAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type cloudinaryStore struct {
	api    uploaderAPI
	folder string
	now    func() time.Time
	logger zerolog.Logger
}

// NewCloudinaryStore builds a store from a cloudinary:// URL or separate credentials.
func NewCloudinaryStore(cfg config.CloudinaryConfig, logger zerolog.Logger) (ImageStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloudinary: %w", err)
	}

	return newCloudinaryStore(&cld.Upload, cfg.Folder, logger), nil
}

func newCloudinaryStore(api uploaderAPI, folder string, logger zerolog.Logger) *cloudinaryStore {
	return &cloudinaryStore{
		api:    api,
		folder: folder,
		now:    time.Now,
		logger: logger.With().Str("component", "cloudinary-store").Logger(),
	}
}

func (s *cloudinaryStore) Upload(ctx context.Context, r io.Reader, filename string) (string, string, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	publicID := fmt.Sprintf("%d_%s", s.now().Unix(), strings.ReplaceAll(base, " ", "_"))

	result, err := s.api.Upload(ctx, r, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("failed to upload image")
		return "", "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", "", fmt.Errorf("failed to upload to cloudinary: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("image uploaded")
	return result.SecureURL, result.PublicID, nil
}

func (s *cloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	if _, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"}); err != nil {
		s.logger.Error().Err(err).Str("public_id", publicID).Msg("failed to delete image")
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	return nil
}

type disabledStore struct{}

// NewDisabledStore rejects uploads. Deletes succeed so stale ids never block edits.
func NewDisabledStore() ImageStore {
	return disabledStore{}
}

func (disabledStore) Upload(context.Context, io.Reader, string) (string, string, error) {
	return "", "", ErrUploadsDisabled
}

func (disabledStore) Delete(context.Context, string) error { return nil }
