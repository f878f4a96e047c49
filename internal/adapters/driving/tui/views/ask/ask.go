// Package ask provides the main question view for the TUI.
package ask

import (
	"context"
	"regexp"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
)

// citationPattern matches [n] markers in an answer.
var citationPattern = regexp.MustCompile(`\[\d+\]`)

// View is the question view: input, answer and the passages it cites.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.PassageList
	statusbar *status.Bar
	spinner   spinner.Model

	answerService driving.AnswerService
	ctx           context.Context
	topK          int

	width      int
	height     int
	ready      bool
	err        error
	asking     bool
	started    time.Time
	result     *domain.AskResult
	focusInput bool // true = typing a question, false = browsing passages
}

// NewView creates a new ask view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		list:          list.NewPassageList(s),
		statusbar:     status.NewBar(s, km),
		spinner:       sp,
		answerService: answerService,
		ctx:           context.Background(),
		topK:          domain.DefaultTopK,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTopK sets how many passages each question retrieves.
func (v *View) WithTopK(k int) *View {
	if k > 0 {
		v.topK = k
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.asking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.setError(msg.Err)
		return v, nil
	}

	// Forward to input component
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.asking {
		// Ignore input until the answer arrives
		return v, nil
	}

	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			question := v.input.Value()
			if question == "" {
				return v, nil
			}
			return v, v.ask(question)
		case tea.KeyEsc:
			if v.list.IsEmpty() {
				return v, func() tea.Msg { return messages.Quit{} }
			}
			// Return to the previous passages
			v.focusInput = false
			v.input.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Browsing passages
	switch {
	case msg.Type == tea.KeyEnter:
		p := v.list.SelectedPassage()
		if p == nil {
			return v, nil
		}
		question := v.Question()
		passage := *p
		return v, func() tea.Msg {
			return messages.PassageSelected{Question: question, Passage: passage}
		}
	case msg.Type == tea.KeyEsc, keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case msg.String() == "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// ask starts answering question and the spinner.
func (v *View) ask(question string) tea.Cmd {
	v.input.Remember(question)
	v.asking = true
	v.started = time.Now()
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateAsking)
	v.statusbar.SetMessage("")
	return tea.Batch(v.spinner.Tick, v.performAsk(question))
}

// performAsk calls the answer service off the UI loop.
func (v *View) performAsk(question string) tea.Cmd {
	svc, ctx, topK := v.answerService, v.ctx, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		result, err := svc.Ask(ctx, domain.Query{Question: question, TopK: topK})
		return messages.AskCompleted{Question: question, Result: result, Err: err}
	}
}

// handleAskCompleted stores the answer and its passages.
func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	v.asking = false
	if msg.Err != nil {
		v.result = nil
		v.list.SetPassages(msg.Question, nil)
		v.focusInput = true
		v.input.Focus()
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.result = msg.Result
	v.list.SetPassages(msg.Question, msg.Result.Passages)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetPassageCount(len(msg.Result.Passages))
	if !v.started.IsZero() {
		v.statusbar.SetLatency(time.Since(v.started))
	}
	v.statusbar.SetMessage(statusNotice(msg.Result))

	if len(msg.Result.Passages) == 0 {
		v.focusInput = true
		v.input.Focus()
		return
	}
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// statusNotice describes a non-ok answer status for the status bar.
func statusNotice(r *domain.AskResult) string {
	switch r.Status {
	case domain.AnswerOK:
		return ""
	case domain.AnswerNoPassages:
		return "no passages found"
	case domain.AnswerSynthesisTimeout:
		return "answer timed out"
	case domain.AnswerSynthesisFailed:
		return "answer failed"
	default:
		return string(r.Status)
	}
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("MediaMind"), "", v.input.View(), "")

	if v.asking {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Thinking..."), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil && !v.asking {
		sections = append(sections, v.renderAnswer(), "", v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderAnswer renders the answer with citation markers emphasised, or the
// reason no answer is available.
func (v *View) renderAnswer() string {
	r := v.result
	switch r.Status {
	case domain.AnswerOK:
		text := citationPattern.ReplaceAllStringFunc(r.Answer, func(m string) string {
			return v.styles.Citation.Render(m)
		})
		return v.styles.Answer.Width(max(v.width-4, 20)).Render(text)
	case domain.AnswerNoPassages:
		return v.styles.Muted.Render("No passages matched the question.")
	default:
		msg := "No answer: " + statusNotice(r)
		if r.AnswerError != "" {
			msg += " (" + r.AnswerError + ")"
		}
		return v.styles.Warning.Render(msg + ". The retrieved passages are listed below.")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-14) // header, input, answer, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the question text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Result returns the last answer, or nil.
func (v *View) Result() *domain.AskResult {
	return v.result
}

// Passages returns the passages of the last answer.
func (v *View) Passages() []domain.Passage {
	return v.list.Passages()
}

// SelectedIndex returns the index of the selected passage.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty question.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetPassages("", nil)
	v.result = nil
	v.err = nil
	v.asking = false
	v.statusbar.Clear()
}
