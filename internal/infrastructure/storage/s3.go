package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/shared"
)

// Ensure S3ArtifactStorage implements ArtifactStorage
var _ ArtifactStorage = (*S3ArtifactStorage)(nil)

// S3ArtifactStorageConfig contains configuration for S3 storage.
// It works with any S3-compatible backend (AWS S3, MinIO, RustFS, etc.)
type S3ArtifactStorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// BaseURL is the public URL prefix for downloads
	BaseURL string
	Logger  *zap.Logger
}

// S3ArtifactStorage stores documents in an S3-compatible bucket
type S3ArtifactStorage struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewS3ArtifactStorage creates a new S3 backed document storage
func NewS3ArtifactStorage(cfg *S3ArtifactStorageConfig) (*S3ArtifactStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &S3ArtifactStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist. Call this
// during application startup.
func (s *S3ArtifactStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("checking bucket existence: %w", err)
	}

	s.logger.Info("creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

// Store uploads a document for the given order.
// Key structure: {year}/{month}/pedido-{order_id}.pdf
func (s *S3ArtifactStorage) Store(ctx context.Context, orderID string, pdfData []byte) (*StoreResult, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", shared.ErrInvalidInput)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("%w: document data is empty", shared.ErrInvalidInput)
	}

	now := time.Now()
	key := fmt.Sprintf("%d/%02d/%s", now.Year(), now.Month(), ArtifactName(orderID))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdfData),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading document: %w", err)
	}

	s.logger.Info("document stored",
		zap.String("order_id", orderID),
		zap.String("key", key),
		zap.Int("size", len(pdfData)),
	)

	return &StoreResult{
		Path: key,
		URL:  s.GetURL(key),
		Size: int64(len(pdfData)),
	}, nil
}

// Get retrieves a document by its storage key
func (s *S3ArtifactStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: document %s", shared.ErrNotFound, path)
		}
		return nil, fmt.Errorf("downloading document: %w", err)
	}
	return out.Body, nil
}

// Delete removes a document
func (s *S3ArtifactStorage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	s.logger.Info("document deleted", zap.String("key", path))
	return nil
}

// CleanupOlderThan removes documents older than the specified age
func (s *S3ArtifactStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("listing documents: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if err := s.Delete(ctx, aws.ToString(obj.Key)); err != nil {
				s.logger.Warn("cleanup delete failed", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	s.logger.Info("cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// GetURL returns the accessible URL for a stored document
func (s *S3ArtifactStorage) GetURL(path string) string {
	if s.baseURL != "" {
		return strings.TrimSuffix(s.baseURL, "/") + "/" + path
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, path)
}
