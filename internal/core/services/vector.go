package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// errZeroVector is returned when an embedding cannot be normalised.
var errZeroVector = errors.New("embedding has zero norm")

// normalise returns a unit-length copy of v.
func normalise(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, errZeroVector
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// truncateRunes cuts s to at most limit characters without splitting a rune.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// classifyUpstream turns deadline and network timeouts into an
// UpstreamTimeoutError and marks other failures with domain.ErrUpstream.
func classifyUpstream(service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUpstreamTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamTimeoutError{Service: service, Err: err}
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return &domain.UpstreamTimeoutError{Service: service, Err: err}
	}
	if errors.Is(err, domain.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstream, service, err)
}
