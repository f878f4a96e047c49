package driving

import (
	"context"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// SearchService retrieves ranked passages for a question.
type SearchService interface {
	// Search returns up to topK passages, best first.
	Search(ctx context.Context, question string, topK int) ([]domain.Passage, error)
}

// AnswerService answers questions with cited passages.
type AnswerService interface {
	// Ask retrieves passages and synthesises an answer from them.
	// Retrieval errors are returned; synthesis failures are reported in the result.
	Ask(ctx context.Context, q domain.Query) (*domain.AskResult, error)
}

// PreviewService renders stored document pages and links.
type PreviewService interface {
	// RenderPage returns a PNG of the 1-based page of the stored document.
	RenderPage(ctx context.Context, key string, page int) ([]byte, error)

	// DocumentURL returns a presigned download URL for the stored document.
	DocumentURL(ctx context.Context, key string) (string, error)
}
