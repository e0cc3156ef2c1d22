package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// FolderExports is the S3 prefix for export objects.
const FolderExports = "exports"

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// S3 provides S3 operations with pre-signed URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		if logger != nil {
			logger.Info("S3 client using credentials from .env/config", zap.String("region", cfg.Region), zap.String("exports_bucket", cfg.ExportsBucket))
		}
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts for streaming
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ExportKey returns the S3 object key: exports/{form_id}/{export_id}.csv.
func ExportKey(formID, exportID string) string {
	return path.Join(FolderExports, formID, exportID+".csv")
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for download.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// ExportsBucket returns the exports bucket name.
func (s *S3) ExportsBucket() string { return s.cfg.ExportsBucket }

// Upload streams a reader to S3. Objects are private; downloads go through
// pre-signed URLs.
func (s *S3) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	_, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
	return url, nil
}

// DeleteObject removes an object from S3.
func (s *S3) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// DeleteExport removes an export object from the exports bucket.
func (s *S3) DeleteExport(ctx context.Context, key string) error {
	return s.DeleteObject(ctx, s.cfg.ExportsBucket, key)
}
