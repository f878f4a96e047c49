// Package tui is the full-screen question-and-answer interface: ask a
// question, read the cited answer, then browse the passages behind it and
// open any of them as a presigned document link.
package tui

import (
	"errors"

	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
)

// ErrMissingAnswerService is returned by NewApp without an answer port.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// Ports are the services the TUI drives. Preview is optional; without it
// the passage view cannot open documents.
type Ports struct {
	Answer  driving.AnswerService
	Preview driving.PreviewService
}

// NewPorts bundles the services for NewApp.
func NewPorts(answer driving.AnswerService, preview driving.PreviewService) *Ports {
	return &Ports{Answer: answer, Preview: preview}
}

// Validate reports a missing required port.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
