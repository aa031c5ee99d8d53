package ledger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 connection configuration
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// objectGetter is the subset of the S3 client used by S3Source.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads ledgers stored as CSV objects in an S3-compatible bucket.
type S3Source struct {
	client objectGetter
	bucket string
	prefix string
}

// NewS3 creates a new S3 ledger source
func NewS3(cfg S3Config) *S3Source {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true // Required for MinIO and most S3-compatible services
	}

	return &S3Source{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: strings.TrimSuffix(cfg.Prefix, "/"),
	}
}

func (s *S3Source) Name() string {
	return "s3"
}

// location resolves id to a bucket and key. An id of the form
// s3://bucket/key names the object directly; anything else is a key
// under the configured bucket and prefix.
func (s *S3Source) location(id string) (string, string, error) {
	if rest, ok := strings.CutPrefix(id, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return "", "", fmt.Errorf("invalid s3 url: %q", id)
		}
		return bucket, key, nil
	}
	if s.bucket == "" {
		return "", "", fmt.Errorf("no bucket configured for key %q", id)
	}
	if s.prefix == "" {
		return s.bucket, id, nil
	}
	return s.bucket, s.prefix + "/" + id, nil
}

func (s *S3Source) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	bucket, key, err := s.location(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	return output.Body, nil
}
