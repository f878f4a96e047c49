package driven

import "context"

// LLMService completes a prompt with a language model. Answer synthesis is
// its only caller; without one, ask returns passages and no answer.
type LLMService interface {
	// Complete sends prompt in exactly one upstream request. Implementations
	// never retry.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (Completion, error)

	ModelName() string

	// Ping checks the backend is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// CompletionOptions bounds one completion.
type CompletionOptions struct {
	// MaxTokens caps the output length. Zero leaves it to the backend.
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Completion is a model's reply to one prompt.
type Completion struct {
	Text string

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool

	// Token counts as reported by the backend; zero when not reported.
	PromptTokens int
	OutputTokens int
}
