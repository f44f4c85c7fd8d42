package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/pkg/breaker"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

const defaultUploadTimeout = 30 * time.Second

// ErrEmptyImage is returned when an upload has no content.
var ErrEmptyImage = errors.New("image is empty")

// Config describes an S3-compatible bucket. PublicBaseURL, when set, is the
// prefix under which uploaded objects are served.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
	Timeout       time.Duration
}

// putObjectAPI is the subset of *s3.Client used for uploads.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to an S3-compatible bucket behind a circuit breaker.
type S3Store struct {
	client  putObjectAPI
	cb      *gobreaker.CircuitBreaker
	cfg     Config
	newKey  func(folder, name, ext string) string
	log     zerolog.Logger
	timeout time.Duration
}

// NewS3Store builds an S3 client from cfg. A custom endpoint (MinIO, R2, ...)
// overrides the AWS default.
func NewS3Store(ctx context.Context, cfg Config, log zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Store(client, cfg, log), nil
}

func newS3Store(client putObjectAPI, cfg Config, log zerolog.Logger) *S3Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &S3Store{
		client:  client,
		cb:      breaker.New("object-storage", log),
		cfg:     cfg,
		newKey:  objectKey,
		log:     log,
		timeout: timeout,
	}
}

// Upload stores img under folder and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, folder, name string, img *domain.Image) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", ErrEmptyImage
	}

	contentType := img.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(img.Data)
	}
	key := s.newKey(folder, name, extension(img.Filename, contentType))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(img.Data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(img.Data))),
		})
	})
	metrics.ImageUploadDuration.WithLabelValues(folder).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(folder, "error").Inc()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.ImageUploadsTotal.WithLabelValues(folder, "ok").Inc()

	url := s.publicURL(key)
	s.log.Debug().Str("key", key).Str("url", url).Msg("image uploaded")
	return url, nil
}

func (s *S3Store) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}

// objectKey returns <folder>/<name>-<uuid><ext>. The random suffix keeps
// retried uploads from overwriting each other.
func objectKey(folder, name, ext string) string {
	return fmt.Sprintf("%s/%s-%s%s", folder, name, uuid.New(), ext)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	return imageExtensions[contentType]
}
