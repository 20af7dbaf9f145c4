package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

type bucketAPI interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseUploader writes to a public Supabase Storage bucket.
type SupabaseUploader struct {
	storage bucketAPI
	bucket  string
}

// NewSupabaseUploader connects with the service role key.
func NewSupabaseUploader(url, serviceKey, bucket string) (*SupabaseUploader, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseUploader{storage: client.Storage, bucket: bucket}, nil
}

type uploadResult struct {
	url string
	err error
}

// Upload stores data with upsert enabled so a retried run can overwrite a
// partial object. The storage client has no context support, so ctx only
// bounds how long the caller waits.
func (u *SupabaseUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	done := make(chan uploadResult, 1)
	go func() {
		upsert := true
		_, err := u.storage.UploadFile(u.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		if err != nil {
			done <- uploadResult{err: fmt.Errorf("supabase upload %s: %w", key, err)}
			return
		}
		done <- uploadResult{url: u.storage.GetPublicUrl(u.bucket, key).SignedURL}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if res.url == "" {
			return "", ErrEmptyURL
		}
		return res.url, nil
	}
}
