package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"WaveFM/config"
	"WaveFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
)

// InitMinio initializes the MinIO client and verifies connectivity.
func InitMinio() error {
	cfg := config.Load()

	log.Printf("Connecting to MinIO at %s (region %s)...", cfg.MinioEndpoint, cfg.MinioRegion)
	if len(cfg.MinioAccessKey) > 4 {
		log.Printf("AccessKey: %s...", cfg.MinioAccessKey[:4])
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Connectivity check; bucket creation proper happens per upload.
	if _, err := client.BucketExists(ctx, cfg.SongBucket); err != nil {
		return fmt.Errorf("failed to reach MinIO: %w", err)
	}

	minioClient = client
	log.Println("MinIO client initialized successfully.")
	return nil
}

// GetMinioClient returns the shared MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// BlobStore is the blob-side contract of the upload pipeline. Handlers
// take it as an interface so tests can substitute the store.
type BlobStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	UploadObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (int64, error)
	RemoveObject(ctx context.Context, bucket, objectName string) error
}

// minioStore implements BlobStore on the shared MinIO client.
type minioStore struct {
	client *minio.Client
	region string
}

// NewMinioStore returns a BlobStore bound to the client set up by InitMinio.
func NewMinioStore() BlobStore {
	cfg := config.Load()
	return &minioStore{client: minioClient, region: cfg.MinioRegion}
}

// publicReadPolicy grants anonymous read on every object in the bucket,
// mirroring a public bucket in the hosted store.
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// EnsureBucket creates the bucket if missing and marks it public-read.
// Idempotent; callers treat failure as non-fatal since the subsequent
// upload fails naturally when the bucket is truly unusable.
func (s *minioStore) EnsureBucket(ctx context.Context, bucket string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return fmt.Errorf("failed to set policy on bucket %s: %w", bucket, err)
	}
	logger.Info("bucket created", logger.String("bucket", bucket))
	return nil
}

// UploadObject writes one blob and returns its size.
func (s *minioStore) UploadObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (int64, error) {
	if s.client == nil {
		return 0, fmt.Errorf("MinIO client not initialized")
	}

	info, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload %s/%s: %w", bucket, objectName, err)
	}
	return info.Size, nil
}

// RemoveObject deletes one blob. Used as the compensating step when the
// metadata insert fails after the audio blob was written.
func (s *minioStore) RemoveObject(ctx context.Context, bucket, objectName string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	return s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

// PublicURL derives the publicly readable URL of a blob.
func PublicURL(cfg *config.Config, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", cfg.MinioPublicURL, bucket, objectName)
}

// BucketStats summarizes a bucket for the diagnostics command.
type BucketStats struct {
	Bucket       string
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// CollectBucketStats walks a bucket and aggregates object counts and sizes.
func CollectBucketStats(ctx context.Context, bucket string) (*BucketStats, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	stats := &BucketStats{Bucket: bucket}
	for object := range minioClient.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
	}
	return stats, nil
}

// ListBucketObjects prints every object in a bucket, optionally filtered by prefix.
func ListBucketObjects(ctx context.Context, bucket, prefix string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	for object := range minioClient.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return fmt.Errorf("failed to list bucket %s: %w", bucket, object.Err)
		}
		fmt.Printf("%s  %.2f MB  %s\n",
			object.Key,
			float64(object.Size)/1024/1024,
			object.LastModified.Format(time.RFC3339))
	}
	return nil
}
