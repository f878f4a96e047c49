package driven

import (
	"context"
	"io"
	"time"
)

// ObjectStore holds raw uploaded documents (S3 or compatible).
type ObjectStore interface {
	// EnsureBucket creates the configured bucket if it does not exist.
	EnsureBucket(ctx context.Context) error

	// Upload stores size bytes from r under key.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// List returns every key under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Download returns the object body, or domain.ErrNotFound.
	Download(ctx context.Context, key string) ([]byte, error)

	// PresignedURL returns a time-limited GET URL for key.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error
}
