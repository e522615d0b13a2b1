package report

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nao1215/sosanalyzer/internal/config"
)

// Publisher uploads generated report files.
type Publisher interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// PublishConfig is the report.publish configuration section.
type PublishConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// PublishConfigFromValues reads report.publish from conf.
// It returns false when no bucket is configured.
func PublishConfigFromValues(conf config.Values) (PublishConfig, bool) {
	cfg := PublishConfig{
		Endpoint:  conf.String("report.publish.endpoint", ""),
		AccessKey: conf.String("report.publish.access_key", ""),
		SecretKey: conf.String("report.publish.secret_key", ""),
		Region:    conf.String("report.publish.region", "us-east-1"),
		Bucket:    conf.String("report.publish.bucket", ""),
		Prefix:    conf.String("report.publish.prefix", "sosanalyzer"),
		UseSSL:    conf.Bool("report.publish.use_ssl", true),
	}
	return cfg, strings.TrimSpace(cfg.Bucket) != ""
}

// Validate checks that the configuration is usable.
func (c PublishConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidPublishConfig)
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("%w: endpoint must not include scheme: %q", ErrInvalidPublishConfig, c.Endpoint)
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidPublishConfig)
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("%w: access_key and secret_key must be set together", ErrInvalidPublishConfig)
	}
	return nil
}

// ObjectKey returns the object key of a report file for a run.
func (c PublishConfig) ObjectKey(runID, name string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(c.Prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(append(parts, runID, name), "/")
}

// MinioPublisher uploads reports to an S3 compatible object store.
type MinioPublisher struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioPublisher creates a MinioPublisher for cfg.
// Empty credentials fall back to the AWS environment variables.
func NewMinioPublisher(cfg PublishConfig) (*MinioPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := credentials.NewEnvAWS()
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     creds,
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &MinioPublisher{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (p *MinioPublisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	return nil
}

// Put uploads body under key.
func (p *MinioPublisher) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := p.client.PutObject(ctx, p.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
