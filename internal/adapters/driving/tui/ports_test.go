package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, q domain.Query) (*domain.AskResult, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, q domain.Query) (*domain.AskResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, q)
	}
	return &domain.AskResult{Question: q.Question, Status: domain.AnswerNoPassages}, nil
}

// MockPreviewService implements driving.PreviewService for testing.
type MockPreviewService struct {
	URL string
	Err error
}

func (m *MockPreviewService) RenderPage(_ context.Context, _ string, _ int) ([]byte, error) {
	return nil, m.Err
}

func (m *MockPreviewService) DocumentURL(_ context.Context, _ string) (string, error) {
	return m.URL, m.Err
}

func TestNewPorts(t *testing.T) {
	answer, preview := &MockAnswerService{}, &MockPreviewService{}

	ports := NewPorts(answer, preview)

	require.NotNil(t, ports)
	assert.Same(t, answer, ports.Answer)
	assert.Same(t, preview, ports.Preview)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"all set", NewPorts(&MockAnswerService{}, &MockPreviewService{}), nil},
		{"preview optional", NewPorts(&MockAnswerService{}, nil), nil},
		{"missing answer", NewPorts(nil, &MockPreviewService{}), ErrMissingAnswerService},
		{"nil ports", nil, ErrMissingAnswerService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
