// Package storage publishes generated images to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodcrimes/internal/config"
)

// ErrEmptyURL is returned when a backend accepts an object but yields no public URL.
var ErrEmptyURL = errors.New("storage backend returned an empty public url")

// Uploader stores an object under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New builds the Uploader selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.StorageBackend {
	case "supabase":
		return NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	case "s3":
		return NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicBaseURL)
	case "local", "":
		return NewLocalUploader(cfg.LocalStorageDir, cfg.LocalPublicBaseURL)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
