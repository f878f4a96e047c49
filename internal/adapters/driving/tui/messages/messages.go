// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// AskCompleted carries the outcome of a question back to the model.
// Err is set only when retrieval failed; synthesis failures are in Result.
type AskCompleted struct {
	Question string
	Result   *domain.AskResult
	Err      error
}

// PassageSelected is sent when a passage is opened for reading.
type PassageSelected struct {
	Question string
	Passage  domain.Passage
}

// DocumentURLLoaded carries a presigned link for a passage's document.
type DocumentURLLoaded struct {
	Key string
	URL string
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewAsk is the question input, answer and passage list.
	ViewAsk ViewType = iota
	// ViewPassage shows the full text of one passage.
	ViewPassage
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewAsk:
		return "ask"
	case ViewPassage:
		return "passage"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
