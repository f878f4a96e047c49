package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure ExtractService implements the interface.
var _ driving.ExtractService = (*ExtractService)(nil)

// Skip reasons recorded in the extraction report.
const (
	ReasonEncrypted  = "encrypted"
	ReasonUnparsable = "unparsable"
	ReasonDownload   = "download failed"
)

// Extractor turns one PDF into page chunks.
type Extractor struct {
	parser driven.PDFParser
	ocr    driven.OCRService
	newID  func() string
}

// NewExtractor creates an extractor. The ocr service is optional (can be nil).
func NewExtractor(parser driven.PDFParser, ocr driven.OCRService) *Extractor {
	return &Extractor{
		parser: parser,
		ocr:    ocr,
		newID:  func() string { return uuid.New().String() },
	}
}

// Extract returns one chunk per page in page order. A document that is
// encrypted or cannot be parsed yields an *domain.ExtractionError and no
// chunks at all.
func (e *Extractor) Extract(ctx context.Context, src domain.DocumentSource) ([]domain.Chunk, error) {
	doc, err := e.parser.Open(src.Data)
	if err != nil {
		return nil, rejectDocument(src.Path, err)
	}
	defer doc.Close()

	images := e.openImages(ctx, src)
	if images != nil {
		defer images.Close()
	}

	pages := doc.NumPages()
	chunks := make([]domain.Chunk, 0, pages)
	for page := 1; page <= pages; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return nil, rejectDocument(src.Path, fmt.Errorf("page %d: %w", page, err))
		}

		source := domain.SourceNative
		if images != nil {
			ocrText := e.recognisePage(ctx, images, src.Path, page)
			if strings.TrimSpace(text) == "" && ocrText != "" {
				source = domain.SourceScanned
			}
			text = joinText(text, ocrText)
		}

		chunks = append(chunks, domain.Chunk{
			ChunkID: e.newID(),
			Source:  source,
			DocPath: src.Path,
			Loc:     domain.Location{Page: page},
			Text:    text,
		})
	}

	logger.Debug("Extracted %d pages from %s", len(chunks), src.Path)
	return chunks, nil
}

func (e *Extractor) openImages(ctx context.Context, src domain.DocumentSource) driven.PageImages {
	if e.ocr == nil {
		return nil
	}
	images, err := e.ocr.OpenImages(ctx, src.Data)
	if err != nil {
		logger.Warn("OCR unavailable for %s: %v", src.Path, err)
		return nil
	}
	return images
}

// recognisePage runs OCR over every image of a page. Each image is its own
// error boundary: a failure is logged and the remaining images still count.
func (e *Extractor) recognisePage(ctx context.Context, images driven.PageImages, docPath string, page int) string {
	imgs, err := images.Images(ctx, page)
	if err != nil {
		logger.Warn("List images of %s page %d: %v", docPath, page, err)
		return ""
	}

	var parts []string
	for i, img := range imgs {
		text, err := e.recogniseImage(ctx, img)
		if err != nil {
			logger.Warn("OCR %s page %d image %d: %v", docPath, page, i, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func (e *Extractor) recogniseImage(ctx context.Context, img []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrOCRFailure, r)
		}
	}()
	text, err = e.ocr.Recognise(ctx, img)
	if err != nil && !errors.Is(err, domain.ErrOCRFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrOCRFailure, err)
	}
	return text, err
}

func joinText(primary, secondary string) string {
	switch {
	case secondary == "":
		return primary
	case strings.TrimSpace(primary) == "":
		return secondary
	default:
		return primary + "\n" + secondary
	}
}

func rejectDocument(docPath string, err error) error {
	var ee *domain.ExtractionError
	if errors.As(err, &ee) {
		return ee
	}
	if errors.Is(err, domain.ErrEncrypted) {
		return &domain.ExtractionError{DocPath: docPath, Reason: ReasonEncrypted, Err: err}
	}
	return &domain.ExtractionError{DocPath: docPath, Reason: ReasonUnparsable + ": " + err.Error(), Err: err}
}

// ExtractService extracts every stored PDF into the chunk set.
type ExtractService struct {
	objects   driven.ObjectStore
	extractor *Extractor
	chunks    driven.ChunkStore
	prefix    string
}

// NewExtractService creates an extraction service reading PDFs under prefix.
func NewExtractService(
	objects driven.ObjectStore,
	extractor *Extractor,
	chunks driven.ChunkStore,
	prefix string,
) *ExtractService {
	return &ExtractService{
		objects:   objects,
		extractor: extractor,
		chunks:    chunks,
		prefix:    prefix,
	}
}

// ExtractAll lists, downloads and extracts every PDF, then persists the
// chunk set and the skip report. Per-document failures are recorded and
// the run continues.
func (s *ExtractService) ExtractAll(ctx context.Context) (*domain.ExtractionReport, error) {
	defer logger.Timed("Extraction")()

	// 1. List candidate documents
	keys, err := s.objects.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.prefix, err)
	}
	pdfs := make([]string, 0, len(keys))
	for _, key := range keys {
		if domain.IsPDFKey(key) {
			pdfs = append(pdfs, key)
		}
	}
	sort.Strings(pdfs)
	logger.Info("Found %d PDFs under %s", len(pdfs), s.prefix)

	report := &domain.ExtractionReport{
		Documents: len(pdfs),
		Chunks:    []domain.Chunk{},
		Skipped:   []domain.SkippedDocument{},
	}

	// 2. Extract each document inside its own error boundary
	for _, key := range pdfs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.objects.Download(ctx, key)
		if err != nil {
			logger.Warn("Skip %s: %v", key, err)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Path: key, Reason: ReasonDownload})
			continue
		}

		chunks, err := s.extractor.Extract(ctx, domain.DocumentSource{Path: key, Data: data})
		if err != nil {
			reason := err.Error()
			var ee *domain.ExtractionError
			if errors.As(err, &ee) {
				reason = ee.Reason
			}
			logger.Warn("Skip %s: %s", key, reason)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Path: key, Reason: reason})
			continue
		}
		report.Chunks = append(report.Chunks, chunks...)
	}

	// 3. Persist the chunk set and skip report
	if err := s.chunks.SaveChunks(ctx, report.Chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	if err := s.chunks.SaveSkipped(ctx, report.Skipped); err != nil {
		return nil, fmt.Errorf("save skipped: %w", err)
	}

	logger.Info("Extracted %d chunks, skipped %d documents", len(report.Chunks), len(report.Skipped))
	return report, nil
}
