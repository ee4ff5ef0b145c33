// Package s3 publishes result exports to an S3-compatible bucket.
package s3

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/port"
)

// Exports never change after upload; a new run gets a new key.
const exportCacheControl = "private, max-age=86400, immutable"

type exportStore struct {
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client builds the export store. A custom endpoint (MinIO,
// LocalStack) switches the client to path-style addressing.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (port.ObjectStorage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3.NewS3Client: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logrus.Infof("s3.NewS3Client: publishing exports to bucket %q (region %s)", cfg.Bucket, cfg.Region)
	return &exportStore{
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
	}, nil
}

func (s *exportStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	put := &s3.PutObjectInput{
		Bucket:       aws.String(input.Bucket),
		Key:          aws.String(input.Key),
		Body:         input.Body,
		ContentType:  aws.String(input.ContentType),
		CacheControl: aws.String(exportCacheControl),
		Metadata:     input.Metadata,
	}
	if input.Filename != "" {
		put.ContentDisposition = aws.String(attachment(input.Filename))
	}
	if input.Size > 0 {
		put.ContentLength = aws.Int64(input.Size)
	}

	result, err := s.uploader.Upload(ctx, put)
	if err != nil {
		return nil, fmt.Errorf("s3.Upload %s: %w", input.Key, err)
	}

	out := &port.UploadOutput{Location: result.Location}
	if result.ETag != nil {
		out.ETag = strings.Trim(*result.ETag, `"`)
	}
	return out, nil
}

// GetPresignedURL signs a download link that names the file after the last
// segment of key.
func (s *exportStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(attachment(path.Base(key))),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3.GetPresignedURL %s: %w", key, err)
	}
	return result.URL, nil
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
