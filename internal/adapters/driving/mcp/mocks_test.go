package mcp

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	passages []domain.Passage
	err      error
	topK     int
}

func (m *mockSearchService) Search(_ context.Context, _ string, topK int) ([]domain.Passage, error) {
	m.topK = topK
	return m.passages, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result *domain.AskResult
	err    error
	query  domain.Query
}

func (m *mockAnswerService) Ask(_ context.Context, q domain.Query) (*domain.AskResult, error) {
	m.query = q
	return m.result, m.err
}

// mockPreviewService is a mock implementation of driving.PreviewService.
type mockPreviewService struct {
	png  []byte
	url  string
	err  error
	key  string
	page int
}

func (m *mockPreviewService) RenderPage(_ context.Context, key string, page int) ([]byte, error) {
	m.key, m.page = key, page
	return m.png, m.err
}

func (m *mockPreviewService) DocumentURL(_ context.Context, key string) (string, error) {
	m.key = key
	return m.url, m.err
}
