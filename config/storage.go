package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultImageURLExpiry is how long presigned product image links stay valid.
const DefaultImageURLExpiry = time.Hour

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Expiry     time.Duration
}

// NewS3Config initializes the S3 client for the configured bucket. It returns
// nil and no error when no bucket is configured.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3BucketName == "" {
		return nil, nil
	}

	// Load AWS config from environment or shared config
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3BucketName,
		Expiry:     DefaultImageURLExpiry,
	}, nil
}

// GeneratePresignedURL generates a presigned URL for the given object key with the specified expiration time
func (s *S3Config) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}

// ResolveImageURL turns a stored object key into a presigned link. Absolute
// URLs and empty values are returned unchanged.
func (s *S3Config) ResolveImageURL(ctx context.Context, stored string) (string, error) {
	if s == nil || !IsObjectKey(stored) {
		return stored, nil
	}
	return s.GeneratePresignedURL(ctx, strings.TrimPrefix(stored, "/"), s.Expiry)
}

// IsObjectKey reports whether v looks like a bucket key rather than a URL.
func IsObjectKey(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !strings.Contains(v, "://") && !strings.HasPrefix(v, "data:")
}
