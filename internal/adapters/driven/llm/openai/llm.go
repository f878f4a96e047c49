// Package openai completes synthesis prompts through the OpenAI chat
// completions API or any endpoint that speaks it.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures LLMService. Only APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService sends each prompt as a single user message.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stop        []string  `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewLLMService creates an LLMService, filling unset fields with defaults.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete returns the first choice. A finish_reason of "length" marks the
// completion truncated.
func (s *LLMService) Complete(ctx context.Context, prompt string, opts driven.CompletionOptions) (driven.Completion, error) {
	body := chatRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
	}

	var resp chatResponse
	if err := s.do(ctx, http.MethodPost, "/chat/completions", body, &resp); err != nil {
		return driven.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return driven.Completion{}, errors.New("openai: no response choices returned")
	}

	choice := resp.Choices[0]
	return driven.Completion{
		Text:         choice.Message.Content,
		Truncated:    choice.FinishReason == "length",
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (s *LLMService) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("openai: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != nil {
			return fmt.Errorf("openai: status %d: %s", resp.StatusCode, eb.Error.Message)
		}
		return fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/models", nil, nil)
}

func (s *LLMService) Close() error { return nil }
