package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to find passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved page.
type PassageOutput struct {
	Marker  string  `json:"marker"`
	DocPath string  `json:"doc_path"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of passages to ground the answer on (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer      string          `json:"answer"`
	Status      string          `json:"status"`
	AnswerError string          `json:"answer_error,omitempty"`
	Passages    []PassageOutput `json:"passages"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the PDF pages most similar to a question",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the PDF corpus, citing passages by [marker]",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK, err := resolveTopK(input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	passages, err := s.ports.Search.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Passages: toOutput(passages),
		Count:    len(passages),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	topK, err := resolveTopK(input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	result, err := s.ports.Answer.Ask(ctx, domain.Query{Question: input.Question, TopK: topK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:      result.Answer,
		Status:      result.Status.String(),
		AnswerError: result.AnswerError,
		Passages:    toOutput(result.Passages),
	}, nil
}

// resolveTopK treats an omitted (zero) top_k as the default and rejects
// negative values.
func resolveTopK(k int) (int, error) {
	switch {
	case k == 0:
		return domain.DefaultTopK, nil
	case k < 0:
		return 0, domain.NewValidationError("top_k", "must be a positive integer")
	default:
		return k, nil
	}
}

func toOutput(passages []domain.Passage) []PassageOutput {
	out := make([]PassageOutput, len(passages))
	for i, p := range passages {
		out[i] = PassageOutput{
			Marker:  fmt.Sprintf("[%d]", p.Rank),
			DocPath: p.DocPath,
			Page:    p.Loc.Page,
			Score:   p.Score,
			Text:    p.Text,
		}
	}
	return out
}
