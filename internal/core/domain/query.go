package domain

import "strings"

// DefaultTopK is the number of passages returned when the caller does not say.
const DefaultTopK = 5

// Query is a retrieval request.
type Query struct {
	// Question is the natural-language question.
	Question string

	// TopK is the number of passages requested. Must be at least 1.
	TopK int
}

// Validate rejects blank questions and non-positive TopK.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "must not be empty")
	}
	if q.TopK < 1 {
		return NewValidationError("top_k", "must be at least 1")
	}
	return nil
}

// Passage is a ranked chunk returned by retrieval.
type Passage struct {
	// Rank is the 0-based position in the result; it is also the citation marker.
	Rank int `json:"rank"`

	// Score is the inner product of the query and chunk vectors.
	Score float64 `json:"score"`

	DocPath string   `json:"doc_path"`
	Loc     Location `json:"loc"`
	Text    string   `json:"text"`
}

// AnswerStatus reports how the synthesis step ended.
type AnswerStatus string

// Answer statuses.
const (
	// AnswerOK means the language model produced an answer.
	AnswerOK AnswerStatus = "ok"

	// AnswerNoPassages means retrieval found nothing and the model was not called.
	AnswerNoPassages AnswerStatus = "no_passages"

	// AnswerSynthesisFailed means the model call returned an error.
	AnswerSynthesisFailed AnswerStatus = "synthesis_failed"

	// AnswerSynthesisTimeout means the model call exceeded its time bound.
	AnswerSynthesisTimeout AnswerStatus = "synthesis_timeout"
)

// String returns the string representation.
func (s AnswerStatus) String() string {
	return string(s)
}

// AskResult is the combined outcome of retrieval and synthesis.
// Passages are returned even when synthesis failed.
type AskResult struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Status   AnswerStatus `json:"answer_status"`

	// AnswerError describes a synthesis failure; empty when Status is ok.
	AnswerError string `json:"answer_error,omitempty"`

	Passages []Passage `json:"passages"`
}
