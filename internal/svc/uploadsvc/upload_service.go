// Package uploadsvc stores incoming file uploads under a content-addressed
// random name and generates thumbnails for image uploads.
package uploadsvc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
)

// UploadServiceConfig holds configuration for the upload service.
type UploadServiceConfig struct {
	// Dir is the directory uploaded files are written to
	Dir string `env:"DIR" default:"var/uploads"`
	// URLPrefix is the public URL path the directory is served under
	URLPrefix string `env:"URL_PREFIX" default:"/uploads"`
	// ThumbnailWidth is the pixel width of generated image thumbnails
	ThumbnailWidth int `env:"THUMBNAIL_WIDTH" default:"320"`
}

// UploadService stores uploads on disk. Image uploads additionally get a
// scaled-down thumbnail next to the original.
type UploadService struct {
	cfg UploadServiceConfig
	log logging.Logger
}

// NewUploadService creates a new UploadService and ensures the target
// directory exists.
func NewUploadService(cfg UploadServiceConfig) (*UploadService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &UploadService{
		cfg: cfg,
		log: logging.GetLogger("svc.uploadsvc.upload_service"),
	}, nil
}

// Store writes the uploaded bytes under a random name, keeping the original
// extension. The returned Upload echoes the client file name and the public
// URL of the stored copy.
func (us *UploadService) Store(ctx context.Context, originalName string, data []byte) (*domain.Upload, error) {
	hash := strings.ReplaceAll(uuid.NewString(), "-", "")
	ext := strings.ToLower(filepath.Ext(originalName))
	name := hash + ext

	dest := filepath.Join(us.cfg.Dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	upload := &domain.Upload{
		FileName: originalName,
		FileURL:  us.cfg.URLPrefix + "/" + name,
		Hash:     hash,
	}

	if mimeType, ok := imageExtTypes[ext]; ok {
		thumbURL, err := us.storeThumbnail(hash, ext, mimeType, data)
		if err != nil {
			// The original is stored; a failed thumbnail should not fail
			// the upload.
			us.log.WarnContext(ctx, "thumbnail generation failed", "error", err, "file", name)
		} else {
			upload.ThumbnailURL = &thumbURL
		}
	}

	return upload, nil
}

func (us *UploadService) storeThumbnail(hash, ext, mimeType string, data []byte) (string, error) {
	thumb, err := resizeImage(bytes.NewReader(data), mimeType, us.cfg.ThumbnailWidth)
	if err != nil {
		return "", fmt.Errorf("resize image: %w", err)
	}

	name := hash + "_thumb" + ext
	if err := os.WriteFile(filepath.Join(us.cfg.Dir, name), thumb, 0o644); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}

	return us.cfg.URLPrefix + "/" + name, nil
}
