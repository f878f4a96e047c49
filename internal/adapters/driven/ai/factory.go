// Package ai builds the embedding and language-model adapters named in
// settings and pings them for the check command.
package ai

import (
	"errors"
	"fmt"

	ollamaembed "github.com/custodia-labs/mediamind/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/mediamind/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/mediamind/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/mediamind/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

type (
	embeddingCtor func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmCtor       func(*domain.LLMSettings) (driven.LLMService, error)
)

var embeddingProviders = map[domain.AIProvider]embeddingCtor{
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: s.BaseURL, Model: s.Model, Timeout: s.Timeout, Dimensions: s.Dimensions,
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model, Timeout: s.Timeout, Dimensions: s.Dimensions,
		})
	},
}

var llmProviders = map[domain.AIProvider]llmCtor{
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: s.BaseURL, Model: s.Model, Timeout: s.Timeout, KeepAlive: s.KeepAlive,
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model, Timeout: s.Timeout,
		})
	},
}

// Services are the model adapters one process shares.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close closes whichever adapters were built.
func (s *Services) Close() error {
	var errs []error
	if s.Embedding != nil {
		errs = append(errs, s.Embedding.Close())
	}
	if s.LLM != nil {
		errs = append(errs, s.LLM.Close())
	}
	return errors.Join(errs...)
}

// New builds both adapters. An unset LLM provider leaves LLM nil, in which
// case ask returns passages without an answer.
func New(settings domain.Settings) (*Services, error) {
	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		if embedding != nil {
			_ = embedding.Close()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return &Services{Embedding: embedding, LLM: llm}, nil
}

// CreateEmbeddingService returns nil, nil when no provider is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	ctor, ok := embeddingProviders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%s embedding provider needs an API key", settings.Provider)
	}
	return ctor(settings)
}

// CreateLLMService returns nil, nil when no provider is set.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	ctor, ok := llmProviders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%s LLM provider needs an API key", settings.Provider)
	}
	return ctor(settings)
}
