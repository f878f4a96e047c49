// Package s3 stores raw documents in an S3-compatible bucket (MinIO, AWS).
package s3

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store is an ObjectStore backed by minio-go.
type Store struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a client for the configured endpoint. No request is made
// until the first operation.
func New(cfg domain.StorageSettings) (*Store, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if secure && cfg.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed endpoints
		opts.Transport = transport
	}

	client, err := minio.New(host, opts)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// parseEndpoint splits an endpoint URL into host and TLS flag. A bare
// host:port is treated as plain HTTP.
func parseEndpoint(endpoint string) (host string, secure bool, err error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("%w: s3 endpoint is empty", domain.ErrConfig)
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), false, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("%w: s3 endpoint: %v", domain.ErrConfig, err)
	}
	switch u.Scheme {
	case "http":
	case "https":
		secure = true
	default:
		return "", false, fmt.Errorf("%w: s3 endpoint scheme %q", domain.ErrConfig, u.Scheme)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("%w: s3 endpoint has no host", domain.ErrConfig)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("%w: s3 endpoint must not have a path", domain.ErrConfig)
	}
	return u.Host, secure, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		// Another writer may have created it in the meantime.
		if code := minio.ToErrorResponse(err).Code; code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	logger.Info("Created bucket %s", s.bucket)
	return nil
}

// Upload stores size bytes from r under key.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

// List returns every key under prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	// Cancelling on return stops the listing goroutine after an early error.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Download returns the object body, or domain.ErrNotFound.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as NoSuchKey surface on first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(key, err)
	}
	return data, nil
}

// PresignedURL returns a time-limited GET URL after checking key exists.
func (s *Store) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", s.mapError(key, err)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return u.String(), nil
}

// Ping checks the endpoint answers and the credentials are accepted.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("s3 %s: %w", s.client.EndpointURL().Host, err)
	}
	return nil
}

func (s *Store) mapError(key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("downloading %s: %w", key, err)
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
	}
	return false
}
