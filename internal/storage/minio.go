// Package storage holds profile photos in a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/codrift/codrift/backend/go-services/internal/config"
)

// MinIOStorage is a thin wrapper around the minio client. Avatars live under
// a fixed per-user key so a re-upload replaces the previous photo.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage connects to the configured endpoint and ensures the bucket
// exists.
func NewMinIOStorage(cfg *config.MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	if err := s.ensureBucket(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStorage) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err == nil {
		return nil
	}
	exists, checkErr := s.client.BucketExists(ctx, s.bucket)
	if checkErr == nil && exists {
		return nil
	}
	return fmt.Errorf("ensure bucket %s: %w", s.bucket, err)
}

// AvatarKey is the object key for a user's profile photo.
func AvatarKey(uid string) string {
	return "avatars/" + uid
}

// UploadAvatar stores a user's profile photo and returns its object key.
func (s *MinIOStorage) UploadAvatar(ctx context.Context, uid string, r io.Reader, size int64, contentType string) (string, error) {
	key := AvatarKey(uid)
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return "", err
	}
	return key, nil
}

// DownloadAvatar opens the stored photo for uid. The caller closes the
// returned reader.
func (s *MinIOStorage) DownloadAvatar(ctx context.Context, uid string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, AvatarKey(uid), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; stat to surface missing objects now
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// GetPresignedURL returns a presigned GET URL for key valid for expires.
func (s *MinIOStorage) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
