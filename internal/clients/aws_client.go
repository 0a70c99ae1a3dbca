package clients

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spacesedan/redditpersona/config"
)

// S3Archiver copies exported reports to a bucket.
type S3Archiver struct {
	Client *s3.Client
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, cfg config.ExportConfig) (*S3Archiver, error) {
	slog.Info("[AWSClient] Initializing AWS Config...", slog.String("region", cfg.AWSRegion))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("[AWSClient] Failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		}
	})

	slog.Info("[AWSClient] AWS Config Initialized", slog.String("bucket", cfg.S3Bucket))
	return &S3Archiver{Client: client, bucket: cfg.S3Bucket, prefix: cfg.S3Prefix}, nil
}

// ObjectKey is where a report file for username lands in the bucket.
func (a *S3Archiver) ObjectKey(username, fileName string) string {
	return path.Join(a.prefix, username, fileName)
}

func (a *S3Archiver) Upload(ctx context.Context, username, fileName, contentType string, body []byte) error {
	key := a.ObjectKey(username, fileName)
	_, err := a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("[AWSClient] failed to upload %s: %w", key, err)
	}
	slog.Info("[AWSClient] Uploaded report", slog.String("bucket", a.bucket), slog.String("key", key))
	return nil
}
