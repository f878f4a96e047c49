// Package mcp exposes the PDF corpus to AI assistants over the Model Context
// Protocol: search and ask as tools, page renders and document links as
// resources.
package mcp

import (
	"errors"

	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewServer when no search port is set.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports are the core services the server calls into. Only Search is
// required; ask and the resources are offered when their port is present.
type Ports struct {
	Search  driving.SearchService
	Answer  driving.AnswerService
	Preview driving.PreviewService
}

// Validate reports a missing required port.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// capabilities lists the optional features the ports enable, for logging.
func (p *Ports) capabilities() []string {
	caps := []string{"search"}
	if p.Answer != nil {
		caps = append(caps, "ask")
	}
	if p.Preview != nil {
		caps = append(caps, "preview")
	}
	return caps
}
