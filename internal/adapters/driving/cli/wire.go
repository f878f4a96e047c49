package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/objectstore/s3"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/pdf/pdftext"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/render/poppler"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/snapshot/filesystem"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/watcher"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/services"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// wiring holds services built from configuration and the resources behind them.
type wiring struct {
	Services

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (w *wiring) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i]()
	}
	w.closers = nil
}

// wire loads configuration and builds every service. Object storage and
// local state are required; the AI providers and OCR are optional and leave
// their dependants degraded rather than failing start.
func wire(path string) (_ *wiring, err error) {
	cfg, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded: bucket=%s data=%s", cfg.Storage.Bucket, cfg.Local.DataDir)

	w := &wiring{}
	defer func() {
		if err != nil {
			w.Close()
		}
	}()

	objects, err := s3.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	tracker, err := sqlite.NewIngestStore(cfg.Local.IngestDBPath())
	if err != nil {
		return nil, fmt.Errorf("ingest database: %w", err)
	}
	w.closers = append(w.closers, func() { tracker.Close() }) //nolint:errcheck

	snapshots, err := filesystem.New(cfg.Local.SnapshotsDir(), filesystem.WithRetention(cfg.Local.KeepSnapshots))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	w.closers = append(w.closers, func() { snapshots.Close() }) //nolint:errcheck

	aiServices, aiErr := ai.New(cfg)
	if aiErr != nil {
		logger.Warn("AI providers unavailable: %v", aiErr)
		aiServices = &ai.Services{}
	}
	w.closers = append(w.closers, func() { aiServices.Close() }) //nolint:errcheck

	chunks := jsonfile.NewChunkStore(cfg.Local.ProcessedDir())
	parser := pdftext.NewParser()
	renderer := poppler.New(cfg.Render)

	var ocr driven.OCRService
	if cfg.OCR.Enabled {
		ocr = tesseract.New(cfg.OCR)
	}

	search := services.NewRetrievalService(aiServices.Embedding, snapshots, cfg.Embedding.Timeout)
	synthesis := services.NewSynthesisService(aiServices.LLM, services.SynthesisOptions{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})

	w.Services = Services{
		Settings: cfg,
		Ingest:   services.NewIngestService(objects, tracker, cfg.Storage.RawPrefix),
		Extract: services.NewExtractService(
			objects, services.NewExtractor(parser, ocr), chunks, cfg.Storage.PDFPrefix()),
		Index: services.NewIndexService(chunks, aiServices.Embedding, snapshots, services.IndexOptions{
			MaxChars:  cfg.Embedding.MaxChars,
			BatchSize: cfg.Embedding.BatchSize,
			Timeout:   cfg.Embedding.Timeout,
		}),
		Search:         search,
		Answer:         services.NewAnswerService(search, synthesis),
		Preview:        services.NewPreviewService(objects, parser, renderer, cfg.Render.DPI, cfg.Storage.PresignExpiry),
		ChangeNotifier: watcher.New(watcher.DefaultSettle),
		HealthTargets: []ai.Target{
			{Name: "object storage", Pinger: objects},
			{Name: "embedding", Pinger: aiServices.Embedding},
			{Name: "llm", Pinger: aiServices.LLM},
			{Name: "ocr", Pinger: ocr},
			{Name: "renderer", Pinger: renderer},
		},
	}
	return w, nil
}

// errNoService is wrapped by commands whose service could not be wired.
var errNoService = errors.New("service not configured")
