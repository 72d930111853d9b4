package capture

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Adapter.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Adapter stores document images in a bucket and returns their public URL.
type S3Adapter struct {
	client        S3API
	bucket        string
	publicBaseURL string
	logger        *logging.Logger
	now           func() time.Time
}

// NewS3Adapter creates the bucket-backed adapter. publicBaseURL overrides the
// default virtual-hosted bucket URL, for CDN fronting.
func NewS3Adapter(client S3API, bucket, publicBaseURL string, logger *logging.Logger) *S3Adapter {
	if client == nil {
		panic("capture: nil s3 client")
	}
	if bucket == "" {
		panic("capture: empty bucket")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Adapter{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		now:           time.Now,
	}
}

// Upload writes the image under a date-partitioned key and returns its URL.
func (a *S3Adapter) Upload(ctx context.Context, up Upload) (ImageValue, error) {
	now := a.now().UTC()
	key := fmt.Sprintf("documents/%d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), extFor(up.ContentType))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(up.Data),
		ContentType: aws.String(up.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("capture: s3 put %s: %w", key, err)
	}

	a.logger.Info("document stored",
		"s3_key", key,
		"content_type", up.ContentType,
		"bytes", len(up.Data),
	)

	if a.publicBaseURL != "" {
		return ImageValue(fmt.Sprintf("%s/%s", a.publicBaseURL, key)), nil
	}
	return ImageValue(fmt.Sprintf("https://%s.s3.amazonaws.com/%s", a.bucket, key)), nil
}
