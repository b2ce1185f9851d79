package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mahfaza/pkg/types"
)

// MinIO stores attachments in an S3-compatible bucket. Safe for concurrent
// use by multiple goroutines.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the configured endpoint and ensures the bucket exists.
func NewMinIO(cfg *types.Config) (*MinIO, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}

	cli, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIO{client: cli, bucket: cfg.S3Bucket}, nil
}

func (m *MinIO) Put(ctx context.Context, originalName string, r io.Reader) (string, error) {
	name := NewName(originalName)

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucket, name, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return name, nil
}

func (m *MinIO) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}

	// GetObject is lazy; Stat forces the existence check.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, fs.ErrNotExist
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}

	return obj, nil
}

func (m *MinIO) Delete(ctx context.Context, name string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (m *MinIO) Exists(ctx context.Context, name string) (bool, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}
