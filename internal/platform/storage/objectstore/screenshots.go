package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rgdevment/scam-shield/pkg/logging"
)

// S3API is the subset of the S3 client used by ScreenshotStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ScreenshotStore keeps report screenshots in an S3 bucket.
type ScreenshotStore struct {
	client     S3API
	bucket     string
	publicBase string
	logger     *logging.Logger
	now        func() time.Time
}

// NewScreenshotStore creates a store writing to bucket. Object URLs are built
// from publicBase when set, otherwise as s3://bucket/key.
func NewScreenshotStore(client S3API, bucket, publicBase string, logger *logging.Logger) *ScreenshotStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScreenshotStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

// Upload writes body under screenshots/<unix-millis>_<name> and returns its URL.
func (s *ScreenshotStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s.key(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", key, err)
	}

	s.logger.Info("stored screenshot", "s3_key", key, "content_type", contentType)
	return s.url(key), nil
}

func (s *ScreenshotStore) key(name string) string {
	base := unsafeKeyChars.ReplaceAllString(path.Base(strings.ReplaceAll(name, "\\", "/")), "_")
	if base == "" || base == "." || base == "/" || base == "_" {
		base = "screenshot"
	}
	return fmt.Sprintf("screenshots/%d_%s", s.now().UnixMilli(), base)
}

func (s *ScreenshotStore) url(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	return "s3://" + s.bucket + "/" + key
}
