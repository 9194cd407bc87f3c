package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidDestination is returned for outputs Open cannot parse.
var ErrInvalidDestination = errors.New("export: invalid destination")

// Writer delivers one encoded document.
type Writer interface {
	Write(ctx context.Context, data []byte, contentType string) error
}

// S3Options configures the client used for s3:// destinations. Credentials
// fall back to the default AWS chain when the keys are empty.
type S3Options struct {
	Region          string
	Endpoint        string // optional, e.g. MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient replaces the SDK transport. Tests point it at a fake.
	HTTPClient s3.HTTPClient
}

// Open returns the writer for dest: "-" or "" is stdout, s3://bucket/key is
// an S3 object, anything else is a file path.
func Open(ctx context.Context, dest string, opts S3Options) (Writer, error) {
	switch {
	case dest == "" || dest == "-":
		return &StreamWriter{W: os.Stdout}, nil
	case strings.HasPrefix(dest, "s3://"):
		bucket, key, err := ParseS3URL(dest)
		if err != nil {
			return nil, err
		}
		return NewS3Writer(ctx, opts, bucket, key)
	}
	return &FileWriter{Path: dest}, nil
}

// ============================================================================
// Stream and File
// ============================================================================

// StreamWriter writes to an io.Writer.
type StreamWriter struct {
	W io.Writer
}

func (s *StreamWriter) Write(_ context.Context, data []byte, _ string) error {
	_, err := s.W.Write(data)
	return err
}

// FileWriter replaces the file at Path, creating parent directories.
type FileWriter struct {
	Path string
}

func (f *FileWriter) Write(_ context.Context, data []byte, _ string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("export: write file: %w", err)
	}
	return nil
}

// ============================================================================
// S3
// ============================================================================

// S3Writer uploads to one object key.
type S3Writer struct {
	client *s3.Client
	bucket string
	key    string
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidDestination, raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s needs a bucket and a key", ErrInvalidDestination, raw)
	}
	return bucket, key, nil
}

// NewS3Writer creates an S3 client from opts.
func NewS3Writer(ctx context.Context, opts S3Options, bucket, key string) (*S3Writer, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})
	return &S3Writer{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Writer) Write(ctx context.Context, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("export: put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
