package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService uploads local media to object storage, gated by the dedup table.
//
// Dedup is keyed by the exact local path string: a file is skipped iff a
// record for that path exists. Upload and record are not transactional, so a
// crash between them re-uploads the file on the next run.
type IngestService struct {
	objects   driven.ObjectStore
	tracker   driven.IngestStore
	rawPrefix string
	now       func() time.Time
}

// NewIngestService creates an ingestion service.
func NewIngestService(objects driven.ObjectStore, tracker driven.IngestStore, rawPrefix string) *IngestService {
	return &IngestService{
		objects:   objects,
		tracker:   tracker,
		rawPrefix: rawPrefix,
		now:       time.Now,
	}
}

// AlreadyIngested reports whether the exact path has been recorded.
func (s *IngestService) AlreadyIngested(ctx context.Context, localPath string) (bool, error) {
	ok, err := s.tracker.Has(ctx, localPath)
	if err != nil {
		return false, &domain.DedupStoreError{Op: "lookup", Err: err}
	}
	return ok, nil
}

// RecordIngested marks the path as uploaded. Recording an already recorded
// path leaves the original record in place.
func (s *IngestService) RecordIngested(ctx context.Context, localPath, storageKey string) error {
	err := s.tracker.Record(ctx, domain.IngestRecord{
		LocalPath:  localPath,
		StorageKey: storageKey,
		UploadedAt: s.now().UTC(),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		logger.Debug("Already recorded: %s", localPath)
		return nil
	}
	if err != nil {
		return &domain.DedupStoreError{Op: "record", Err: err}
	}
	return nil
}

// Ingested returns every dedup record ordered by path.
func (s *IngestService) Ingested(ctx context.Context) ([]domain.IngestRecord, error) {
	records, err := s.tracker.List(ctx)
	if err != nil {
		return nil, &domain.DedupStoreError{Op: "list", Err: err}
	}
	return records, nil
}

// StorageKey maps a file under root to its object key:
// rawPrefix + category + "/" + slash-separated path relative to root.
func StorageKey(rawPrefix, root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	return rawPrefix + string(domain.CategoryFor(path)) + "/" + filepath.ToSlash(rel), nil
}

// IngestDir walks root in lexical order and uploads every file without a
// dedup record. An upload failure is counted and the walk continues; a dedup
// table failure stops the run.
func (s *IngestService) IngestDir(ctx context.Context, root string) (*domain.IngestReport, error) {
	defer logger.Timed("Ingestion")()
	logger.Debug("Root: %s", root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewValidationError("dir", root+" is not a directory")
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	report := &domain.IngestReport{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("Walk %s: %v", path, walkErr)
			report.Failures = append(report.Failures, domain.IngestFailure{Path: path, Error: walkErr.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.ingestFile(ctx, root, path, report)
	})
	if err != nil {
		return report, err
	}

	logger.Info("Ingest complete: %d uploaded, %d skipped, %d failed",
		report.Uploaded, report.Skipped, report.Failed())
	return report, nil
}

func (s *IngestService) ingestFile(ctx context.Context, root, path string, report *domain.IngestReport) error {
	// 1. Dedup gate
	seen, err := s.AlreadyIngested(ctx, path)
	if err != nil {
		return err
	}
	if seen {
		report.Skipped++
		return nil
	}

	// 2. Upload
	key, err := StorageKey(s.rawPrefix, root, path)
	if err != nil {
		report.Failures = append(report.Failures, domain.IngestFailure{Path: path, Error: err.Error()})
		return nil
	}
	if err := s.upload(ctx, path, key); err != nil {
		logger.Warn("Upload %s failed: %v", path, err)
		report.Failures = append(report.Failures, domain.IngestFailure{Path: path, Error: err.Error()})
		return nil
	}

	// 3. Record
	if err := s.RecordIngested(ctx, path, key); err != nil {
		return err
	}
	report.Uploaded++
	logger.Debug("Uploaded %s -> %s", path, key)
	return nil
}

func (s *IngestService) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return s.objects.Upload(ctx, key, f, info.Size(), domain.ContentTypeFor(path))
}
