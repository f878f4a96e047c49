package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrExtraction indicates a document could not be turned into chunks.
	// The document is skipped; other documents are unaffected.
	ErrExtraction = errors.New("extraction failed")

	// ErrEncrypted indicates a document is password protected.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrOCRFailure indicates recognition of a single embedded image failed.
	// Callers treat it as a per-image condition and carry on.
	ErrOCRFailure = errors.New("ocr failed")

	// ErrDedupStore indicates the ingestion dedup table cannot be read or written.
	ErrDedupStore = errors.New("dedup store unavailable")

	// ErrBuildInProgress indicates an index build is already running.
	ErrBuildInProgress = errors.New("index build in progress")

	// Query Errors.

	// ErrIndexConsistency indicates the vector index and the metadata store disagree.
	// It is never silently recovered.
	ErrIndexConsistency = errors.New("index consistency violated")

	// ErrNoSnapshot indicates no index snapshot has been published yet.
	ErrNoSnapshot = errors.New("no index snapshot published")

	// ErrUpstreamTimeout indicates an embedding or LLM call exceeded its time bound.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstream indicates an embedding or LLM call failed for a reason other than time.
	ErrUpstream = errors.New("upstream service failed")

	// ErrSynthesis indicates the language model call failed.
	// Retrieved passages remain valid.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrValidation indicates a request was rejected before any work was done.
	ErrValidation = errors.New("validation failed")

	// ErrPreviewUnavailable indicates no page renderer is configured.
	ErrPreviewUnavailable = errors.New("page preview unavailable")

	// ErrConfig indicates the runtime configuration is incomplete or malformed.
	ErrConfig = errors.New("invalid configuration")
)

// ExtractionError describes why one document produced no chunks.
type ExtractionError struct {
	// DocPath is the storage key of the rejected document.
	DocPath string

	// Reason is the short reason recorded in the skip report.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.DocPath, e.Reason)
}

// Unwrap exposes both ErrExtraction and the cause.
func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtraction}
	}
	return []error{ErrExtraction, e.Err}
}

// DedupStoreError wraps a failure of the ingestion dedup table.
type DedupStoreError struct {
	Op  string
	Err error
}

func (e *DedupStoreError) Error() string {
	return fmt.Sprintf("dedup store %s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrDedupStore and the cause.
func (e *DedupStoreError) Unwrap() []error {
	return []error{ErrDedupStore, e.Err}
}

// IndexConsistencyError lists the ids present on one side of the
// vector/metadata pair but not on the other.
type IndexConsistencyError struct {
	// MissingMetadata holds vector ids with no metadata row.
	MissingMetadata []int64

	// MissingVectors holds metadata ids with no vector.
	MissingVectors []int64

	// Detail describes a structural mismatch such as a count difference.
	Detail string
}

func (e *IndexConsistencyError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.MissingMetadata) > 0 {
		parts = append(parts, fmt.Sprintf("ids without metadata %v", limitIDs(e.MissingMetadata)))
	}
	if len(e.MissingVectors) > 0 {
		parts = append(parts, fmt.Sprintf("ids without vectors %v", limitIDs(e.MissingVectors)))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return ErrIndexConsistency.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports ErrIndexConsistency as a match.
func (e *IndexConsistencyError) Is(target error) bool {
	return target == ErrIndexConsistency
}

func limitIDs(ids []int64) []int64 {
	if len(ids) > 10 {
		return ids[:10]
	}
	return ids
}

// UpstreamTimeoutError reports which external service ran out of time.
type UpstreamTimeoutError struct {
	// Service names the upstream, e.g. "embedding" or "llm".
	Service string
	Err     error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamTimeout, e.Service, e.Err)
}

// Unwrap exposes both ErrUpstreamTimeout and the cause.
func (e *UpstreamTimeoutError) Unwrap() []error {
	return []error{ErrUpstreamTimeout, e.Err}
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is against both ErrValidation and ErrInvalidInput.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, ErrInvalidInput}
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
