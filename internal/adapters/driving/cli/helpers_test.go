package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediamind/internal/core/domain"
)

var errMock = errors.New("mock failure")

type mockIngestService struct {
	report  *domain.IngestReport
	records []domain.IngestRecord
	err     error
	errs    []error // per IngestDir call, then err
	dirs    []string
}

func (m *mockIngestService) AlreadyIngested(context.Context, string) (bool, error) {
	return false, m.err
}

func (m *mockIngestService) RecordIngested(context.Context, string, string) error {
	return m.err
}

func (m *mockIngestService) Ingested(context.Context) ([]domain.IngestRecord, error) {
	return m.records, m.err
}

func (m *mockIngestService) IngestDir(_ context.Context, root string) (*domain.IngestReport, error) {
	m.dirs = append(m.dirs, root)
	err := m.err
	if len(m.errs) > 0 {
		err, m.errs = m.errs[0], m.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	if m.report == nil {
		return &domain.IngestReport{}, nil
	}
	return m.report, nil
}

// mockNotifier emits a fixed number of change events, then closes.
type mockNotifier struct {
	events int
}

func (m *mockNotifier) Watch(context.Context, string) (<-chan struct{}, error) {
	ch := make(chan struct{}, m.events)
	for range m.events {
		ch <- struct{}{}
	}
	close(ch)
	return ch, nil
}

type mockExtractService struct {
	report *domain.ExtractionReport
	err    error
	calls  int
}

func (m *mockExtractService) ExtractAll(context.Context) (*domain.ExtractionReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type mockIndexService struct {
	info  *domain.SnapshotInfo
	err   error
	calls int
}

func (m *mockIndexService) Build(context.Context) (*domain.SnapshotInfo, error) {
	m.calls++
	return m.info, m.err
}

func (m *mockIndexService) BuildFrom(context.Context, []domain.Chunk) (*domain.SnapshotInfo, error) {
	m.calls++
	return m.info, m.err
}

type mockSearchService struct {
	passages []domain.Passage
	err      error
	topK     int
}

func (m *mockSearchService) Search(_ context.Context, _ string, topK int) ([]domain.Passage, error) {
	m.topK = topK
	return m.passages, m.err
}

type mockAnswerService struct {
	result *domain.AskResult
	err    error
	query  domain.Query
}

func (m *mockAnswerService) Ask(_ context.Context, q domain.Query) (*domain.AskResult, error) {
	m.query = q
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.AskResult{Question: q.Question, Status: domain.AnswerNoPassages}, nil
	}
	return m.result, nil
}

type mockPreviewService struct {
	png []byte
	url string
	err error
}

func (m *mockPreviewService) RenderPage(context.Context, string, int) ([]byte, error) {
	return m.png, m.err
}

func (m *mockPreviewService) DocumentURL(context.Context, string) (string, error) {
	return m.url, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error {
	return m.err
}

// testServices holds the mocks injected by setupTestServices.
type testServices struct {
	ingest  *mockIngestService
	extract *mockExtractService
	index   *mockIndexService
	search  *mockSearchService
	answer  *mockAnswerService
	preview *mockPreviewService
}

var mocks testServices

func samplePassages() []domain.Passage {
	return []domain.Passage{
		{Rank: 1, Score: 0.87, DocPath: "raw/pdf/stocks.pdf", Loc: domain.Location{Page: 3}, Text: "Stock prices respond to earnings surprises."},
		{Rank: 2, Score: 0.51, DocPath: "raw/pdf/cats.pdf", Loc: domain.Location{Page: 1}, Text: "Cats nap often."},
	}
}

// setupTestServices injects mock services and returns a cleanup function.
func setupTestServices() func() {
	mocks = testServices{
		ingest: &mockIngestService{},
		extract: &mockExtractService{report: &domain.ExtractionReport{
			Documents: 2,
			Chunks:    make([]domain.Chunk, 5),
			Skipped:   []domain.SkippedDocument{{Path: "raw/pdf/locked.pdf", Reason: "encrypted"}},
		}},
		index: &mockIndexService{info: &domain.SnapshotInfo{
			Version: "20260101T000000Z", Records: 5, Dimensions: 768, Model: "nomic-embed-text", CreatedAt: time.Now(),
		}},
		search:  &mockSearchService{passages: samplePassages()},
		answer:  &mockAnswerService{},
		preview: &mockPreviewService{png: []byte("\x89PNG"), url: "https://store.example/raw/pdf/stocks.pdf?sig=1"},
	}

	SetServices(&Services{
		Settings: domain.Settings{Local: domain.LocalSettings{IncomingDir: "./incoming"}},
		Ingest:   mocks.ingest,
		Extract:  mocks.extract,
		Index:    mocks.index,
		Search:   mocks.search,
		Answer:   mocks.answer,
		Preview:  mocks.preview,
		HealthTargets: []ai.Target{
			{Name: "object storage", Pinger: &mockPinger{}},
			{Name: "ocr"},
		},
	})

	return func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores command flag variables between tests.
func resetFlags() {
	searchTopK, searchJSON = domain.DefaultTopK, false
	searchMinScore, searchDocs = 0, false
	searchCmd.Flags().Lookup("min-score").Changed = false
	askTopK, askJSON = domain.DefaultTopK, false
	ingestWatch = false
	pipelineIngest = false
	previewOutput, previewURL = "", false
	serveAddr = ""
	tuiTopK = domain.DefaultTopK
	versionShort = false
	mcpAddr, mcpSearchOnly = "", false
}
