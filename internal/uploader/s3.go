package uploader

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures the S3/MinIO upload adapter.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix,omitempty"`

	// PublicBaseURL is the URL under which uploaded objects are served
	// (CDN hostname). Defaults to the bucket endpoint.
	PublicBaseURL string `yaml:"public_base_url,omitempty"`
}

// S3 uploads assets to an S3-compatible object store.
type S3 struct {
	client   *minio.Client
	cfg      S3Config
	initOnce sync.Once
	initErr  error
}

// NewS3 creates the S3 upload adapter. Bucket existence is checked lazily on
// first upload.
func NewS3(cfg S3Config) (*S3, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3{client: client, cfg: cfg}, nil
}

func (s *S3) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
		if err != nil {
			s.initErr = fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			s.initErr = fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	})
	return s.initErr
}

// Upload implements Func. The object key is the asset's output-relative name
// under the configured prefix.
func (s *S3) Upload(ctx context.Context, name string, content []byte, ext string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := name
	if s.cfg.Prefix != "" {
		key = strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + name
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.objectURL(key), nil
}

func (s *S3) objectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}
