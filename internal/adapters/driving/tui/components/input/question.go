// Package input holds the question field of the ask view.
package input

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
)

const (
	maxQuestionLength = 512
	maxHistory        = 50

	// counterThreshold is how close to the limit the length counter appears.
	counterThreshold = 64
)

// QuestionInput is a one-line question field that remembers earlier
// questions. Up and down walk the history; editing a recalled question
// leaves the history unchanged.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string // oldest first
	cursor  int      // len(history) means the draft
	draft   string
}

// NewQuestionInput creates a focused, empty question field.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	f := textinput.New()
	f.Placeholder = "Ask a question about your documents..."
	f.Prompt = ""
	f.CharLimit = maxQuestionLength
	f.Width = 50
	f.Focus()

	return &QuestionInput{field: f, styles: s, width: 50}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles history keys and passes everything else to the field.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && q.field.Focused() {
		switch key.Type {
		case tea.KeyUp:
			q.recall(-1)
			return q, nil
		case tea.KeyDown:
			q.recall(+1)
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

// recall moves through the history by step. The unsent draft is kept so
// that moving back past the newest entry restores it.
func (q *QuestionInput) recall(step int) {
	if len(q.history) == 0 {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.field.Value()
	}
	q.cursor = min(max(q.cursor+step, 0), len(q.history))
	if q.cursor == len(q.history) {
		q.field.SetValue(q.draft)
	} else {
		q.field.SetValue(q.history[q.cursor])
	}
	q.field.CursorEnd()
}

// Remember appends a sent question to the history, skipping blanks and
// immediate repeats, and resets the history cursor.
func (q *QuestionInput) Remember(question string) {
	question = strings.TrimSpace(question)
	if question != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != question) {
		q.history = append(q.history, question)
		if len(q.history) > maxHistory {
			q.history = q.history[len(q.history)-maxHistory:]
		}
	}
	q.cursor = len(q.history)
	q.draft = ""
}

// History returns the remembered questions, oldest first.
func (q *QuestionInput) History() []string {
	return q.history
}

// View renders the label, the field and, near the limit, a length counter.
func (q *QuestionInput) View() string {
	parts := []string{
		q.styles.Title.Render("Ask: "),
		q.styles.InputField.Render(q.field.View()),
	}
	if n := len([]rune(q.field.Value())); n >= maxQuestionLength-counterThreshold {
		parts = append(parts, " "+q.styles.Warning.Render(fmt.Sprintf("%d/%d", n, maxQuestionLength)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...) //nolint:misspell
}

func (q *QuestionInput) Value() string         { return q.field.Value() }
func (q *QuestionInput) SetValue(value string) { q.field.SetValue(value) }
func (q *QuestionInput) Focus() tea.Cmd        { return q.field.Focus() }
func (q *QuestionInput) Blur()                 { q.field.Blur() }
func (q *QuestionInput) Focused() bool         { return q.field.Focused() }
func (q *QuestionInput) Width() int            { return q.width }

// SetWidth fits the field to the terminal, leaving room for the label.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-10, 20)
}

// Reset clears the field and the draft. History is kept.
func (q *QuestionInput) Reset() {
	q.field.Reset()
	q.cursor = len(q.history)
	q.draft = ""
}
