package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveConfig locates the object storage bucket for generated reports.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Archive stores generated reports in an S3-compatible bucket.
type Archive struct {
	client *minio.Client
	bucket string
	put    func(ctx context.Context, key string, data []byte, contentType string) error
}

// NewArchive connects to the bucket, creating it when missing.
func NewArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	a := &Archive{client: client, bucket: cfg.Bucket}
	a.put = a.putObject
	return a, nil
}

func (a *Archive) putObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Store writes a report under reports/<name> and returns the object key.
func (a *Archive) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := ReportKey(name)
	if err := a.put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return key, nil
}

// ReportKey is the object key for a report file name.
func ReportKey(name string) string {
	return "reports/" + name
}
