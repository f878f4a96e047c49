package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const answerInstruction = "Answer the question using only the numbered context passages above. " +
	"Cite the passages you rely on by their markers, like [0] or [1]. " +
	"If the passages do not contain the answer, say so."

// BuildPrompt renders the synthesis prompt: the passages in rank order,
// each prefixed with its rank as the marker, then the instruction, then the question.
func BuildPrompt(question string, passages []domain.Passage) string {
	var b strings.Builder
	b.WriteString("### Context\n")
	for _, p := range passages {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(p.Rank))
		b.WriteString("] ")
		b.WriteString(strings.TrimSpace(p.Text))
		b.WriteString("\n")
	}
	b.WriteString("\n### Instructions\n")
	b.WriteString(answerInstruction)
	b.WriteString("\n\n### Question\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\n### Answer:\n")
	return b.String()
}

// SynthesisOptions tunes the model call.
type SynthesisOptions struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds the single model call. Zero means no extra bound.
	Timeout time.Duration
}

// SynthesisService produces a cited answer with exactly one model call.
// There is no retry.
type SynthesisService struct {
	llm  driven.LLMService
	opts SynthesisOptions
}

// NewSynthesisService creates a synthesis service. llm may be nil, in which
// case Synthesize fails with domain.ErrLLMUnavailable.
func NewSynthesisService(llm driven.LLMService, opts SynthesisOptions) *SynthesisService {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = domain.DefaultMaxTokens
	}
	return &SynthesisService{llm: llm, opts: opts}
}

// Synthesize returns the trimmed model output for the question and passages.
func (s *SynthesisService) Synthesize(ctx context.Context, question string, passages []domain.Passage) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, domain.ErrLLMUnavailable)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	prompt := BuildPrompt(question, passages)
	logger.Debug("Prompt: %d passages, %d bytes, model %s", len(passages), len(prompt), s.llm.ModelName())

	out, err := s.llm.Complete(ctx, prompt, driven.CompletionOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, classifyUpstream("llm", err))
	}
	if out.Truncated {
		logger.Warn("Answer cut off at %d tokens; raise llm.max_tokens for longer answers", s.opts.MaxTokens)
	}
	logger.Debug("Completion: %d prompt tokens, %d output tokens", out.PromptTokens, out.OutputTokens)
	return strings.TrimSpace(out.Text), nil
}

// AnswerService composes retrieval and synthesis.
type AnswerService struct {
	search    driving.SearchService
	synthesis *SynthesisService
}

// NewAnswerService creates an answer service.
func NewAnswerService(search driving.SearchService, synthesis *SynthesisService) *AnswerService {
	return &AnswerService{search: search, synthesis: synthesis}
}

// Ask retrieves passages and synthesises an answer. Retrieval failures are
// returned as errors. Synthesis failures keep the passages and are reported
// through the result status. With no passages the model is not called.
func (s *AnswerService) Ask(ctx context.Context, q domain.Query) (*domain.AskResult, error) {
	passages, err := s.search.Search(ctx, q.Question, q.TopK)
	if err != nil {
		return nil, err
	}

	result := &domain.AskResult{
		Question: q.Question,
		Passages: passages,
	}
	if len(passages) == 0 {
		result.Status = domain.AnswerNoPassages
		return result, nil
	}

	defer logger.Timed("Synthesis")()
	answer, err := s.synthesis.Synthesize(ctx, q.Question, passages)
	switch {
	case err == nil:
		result.Answer = answer
		result.Status = domain.AnswerOK
	case errors.Is(err, domain.ErrUpstreamTimeout):
		logger.Warn("Synthesis timed out: %v", err)
		result.Status = domain.AnswerSynthesisTimeout
		result.AnswerError = err.Error()
	default:
		logger.Warn("Synthesis failed: %v", err)
		result.Status = domain.AnswerSynthesisFailed
		result.AnswerError = err.Error()
	}
	return result, nil
}
