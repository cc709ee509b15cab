package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rahulraut1220/LegalEase/config"
)

// maxPresignExpiry is the longest lifetime S3 accepts for a signed URL
const maxPresignExpiry = 7 * 24 * time.Hour

// ObjectStorage keeps generated contract documents
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

// MinioService stores contract documents in an S3 compatible bucket
type MinioService struct {
	client *minio.Client
	bucket string
	region string
	expiry time.Duration
}

func NewMinioService(cfg *config.MinioConfig) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		expiry: presignExpiry(cfg.ExpireDays),
	}, nil
}

// presignExpiry converts the configured days, clamped to (0, 7 days]
func presignExpiry(days int) time.Duration {
	expiry := time.Duration(days) * 24 * time.Hour
	if expiry <= 0 || expiry > maxPresignExpiry {
		return maxPresignExpiry
	}
	return expiry
}

// EnsureBucket creates the document bucket on first start
func (s *MinioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// UploadFile stores a document. Browsers opening the object directly render
// it inline under its base name.
func (s *MinioService) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: disposition("inline", objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// GetPresignedURL signs a download link that saves the document as an attachment
func (s *MinioService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", disposition("attachment", objectName))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

// DeleteFile removes a document. A missing object is not an error.
func (s *MinioService) DeleteFile(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}

func disposition(kind, objectName string) string {
	return fmt.Sprintf("%s; filename=%q", kind, path.Base(objectName))
}
