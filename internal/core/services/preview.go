package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
)

// Ensure PreviewService implements the interface.
var _ driving.PreviewService = (*PreviewService)(nil)

// PreviewService renders pages of stored documents.
type PreviewService struct {
	objects  driven.ObjectStore
	parser   driven.PDFParser
	renderer driven.PageRenderer
	dpi      int
	expiry   time.Duration
}

// NewPreviewService creates a preview service. renderer may be nil.
func NewPreviewService(
	objects driven.ObjectStore,
	parser driven.PDFParser,
	renderer driven.PageRenderer,
	dpi int,
	expiry time.Duration,
) *PreviewService {
	if dpi <= 0 {
		dpi = domain.DefaultPreviewDPI
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &PreviewService{
		objects:  objects,
		parser:   parser,
		renderer: renderer,
		dpi:      dpi,
		expiry:   expiry,
	}
}

// RenderPage returns a PNG of the 1-based page. An unreadable key or an
// out-of-range page is a *domain.ValidationError.
func (s *PreviewService) RenderPage(ctx context.Context, key string, page int) ([]byte, error) {
	if s.renderer == nil {
		return nil, domain.ErrPreviewUnavailable
	}
	if strings.TrimSpace(key) == "" {
		return nil, domain.NewValidationError("key", "must not be empty")
	}
	if page < 1 {
		return nil, domain.NewValidationError("page", "must be at least 1")
	}

	data, err := s.objects.Download(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("key", fmt.Sprintf("no document stored at %q", key))
	}
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}

	doc, err := s.parser.Open(data)
	if err != nil {
		return nil, domain.NewValidationError("key", fmt.Sprintf("unreadable document %q: %v", key, err))
	}
	pages := doc.NumPages()
	doc.Close()
	if page > pages {
		return nil, domain.NewValidationError("page", fmt.Sprintf("%d out of range, document has %d pages", page, pages))
	}

	png, err := s.renderer.RenderPage(ctx, data, page, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", key, page, err)
	}
	return png, nil
}

// DocumentURL returns a presigned download URL for a stored document.
func (s *PreviewService) DocumentURL(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", domain.NewValidationError("key", "must not be empty")
	}
	return s.objects.PresignedURL(ctx, key, s.expiry)
}
