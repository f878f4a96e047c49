// Package status renders the one-line footer of the ask view.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
)

// State is where the ask cycle currently is.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar shows the ask state on the left and key hints on the right. It holds
// no model of its own; the ask view sets its fields.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	width  int

	state        State
	message      string
	passageCount int
	latency      time.Duration
}

// NewBar creates a bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar at its full width.
func (s *Bar) View() string {
	left, right := s.summary(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) summary() string {
	switch s.state {
	case StateAsking:
		return s.styles.Muted.Render("Retrieving and answering...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateAnswered:
		text := plural(s.passageCount, "passage")
		if s.latency > 0 {
			text += " in " + s.latency.Round(100*time.Millisecond).String()
		}
		if s.message != "" {
			return s.styles.Warning.Render(text + " | " + s.message)
		}
		return s.styles.Normal.Render(text)
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	var bindings []key.Binding
	if s.state == StateAnswered && s.passageCount > 0 {
		bindings = s.keymap.PassagesHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (s *Bar) SetState(state State)       { s.state = state }
func (s *Bar) State() State               { return s.state }
func (s *Bar) SetMessage(msg string)      { s.message = msg }
func (s *Bar) Message() string            { return s.message }
func (s *Bar) SetPassageCount(n int)      { s.passageCount = n }
func (s *Bar) PassageCount() int          { return s.passageCount }
func (s *Bar) SetWidth(width int)         { s.width = width }
func (s *Bar) Width() int                 { return s.width }
func (s *Bar) SetLatency(d time.Duration) { s.latency = d }

// Clear returns the bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.passageCount = 0
	s.latency = 0
}
