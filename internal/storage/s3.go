package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"tourmap/internal/keys"
	"tourmap/pkg/logger"
)

// S3Config holds the connection settings of an S3-compatible store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Service stores cache entries as JSON objects in an S3-compatible bucket.
type S3Service struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewS3Service initializes and returns a new S3 storage service.
func NewS3Service(cfg S3Config, log *zap.Logger) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: endpoint, access key, secret key and bucket are required")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log = logger.OrNop(log)
	log.Info("connected to object store", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return &S3Service{client: minioClient, bucket: cfg.Bucket, log: log}, nil
}

// CreateBucket makes the bucket unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Service) Get(ctx context.Context, key string) ([]byte, bool, error) {
	objectKey := keys.Object(key)
	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get object %s: %w", objectKey, err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key only surfaces on the first read.
	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}
	return data, true, nil
}

// Put overwrites the object for key.
func (s *S3Service) Put(ctx context.Context, key string, value []byte) error {
	objectKey := keys.Object(key)
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(value),
		int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	s.log.Debug("stored cache object", zap.String("key", objectKey))
	return nil
}
