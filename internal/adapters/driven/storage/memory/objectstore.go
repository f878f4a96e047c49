package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
type ObjectStore struct {
	mu      sync.RWMutex
	bucket  string
	created bool
	objects map[string][]byte
	types   map[string]string
}

// NewObjectStore creates a new in-memory object store for bucket.
func NewObjectStore(bucket string) *ObjectStore {
	return &ObjectStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// EnsureBucket marks the bucket as created.
func (s *ObjectStore) EnsureBucket(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = true
	return nil
}

// BucketCreated reports whether EnsureBucket has run.
func (s *ObjectStore) BucketCreated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created
}

// Upload stores the object, replacing any existing one.
func (s *ObjectStore) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("upload %s: read %d bytes, expected %d", key, len(data), size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

// Put stores an object directly.
func (s *ObjectStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = bytes.Clone(data)
}

// List returns every key under prefix in lexical order.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Download returns a copy of the object, or domain.ErrNotFound.
func (s *ObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bytes.Clone(data), nil
}

// ContentType returns the content type recorded at upload.
func (s *ObjectStore) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types[key]
}

// PresignedURL returns a fake URL naming the bucket and key.
func (s *ObjectStore) PresignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", domain.ErrNotFound
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", s.bucket, key, int(expiry.Seconds())), nil
}

// Ping always succeeds.
func (s *ObjectStore) Ping(_ context.Context) error {
	return nil
}
