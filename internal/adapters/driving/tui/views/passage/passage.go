// Package passage provides the full-text view of one retrieved passage.
package passage

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driving"
	"github.com/custodia-labs/mediamind/internal/core/services"
)

// View shows one passage with the question's terms highlighted.
type View struct {
	styles         *styles.Styles
	keymap         *keymap.KeyMap
	previewService driving.PreviewService
	ctx            context.Context

	passage      *domain.Passage
	question     string
	lines        []string
	scrollOffset int
	url          string
	width        int
	height       int
	err          error
}

// NewView creates a new passage view. previewService may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, previewService driving.PreviewService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:         s,
		keymap:         km,
		previewService: previewService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetPassage shows p, highlighting the terms of question.
func (v *View) SetPassage(question string, p domain.Passage) {
	v.passage = &p
	v.question = question
	v.scrollOffset = 0
	v.url = ""
	v.err = nil
	v.wrapContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the passage view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentURLLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.url = msg.URL
			v.err = nil
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch k := msg.String(); {
	case keymap.Matches(k, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(k, v.keymap.Down):
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case keymap.Matches(k, v.keymap.PageUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case keymap.Matches(k, v.keymap.PageDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case k == "home" || k == "g":
		v.scrollOffset = 0
	case k == "end" || k == "G":
		v.scrollOffset = v.maxScrollOffset()
	case keymap.Matches(k, v.keymap.DocumentURL):
		return v, v.loadURL()
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewAsk}
		}
	}
	return v, nil
}

// loadURL returns a command that presigns the passage's document.
func (v *View) loadURL() tea.Cmd {
	if v.passage == nil {
		return nil
	}
	svc, ctx, key := v.previewService, v.ctx, v.passage.DocPath
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentURLLoaded{Key: key, Err: domain.ErrPreviewUnavailable}
		}
		url, err := svc.DocumentURL(ctx, key)
		return messages.DocumentURLLoaded{Key: key, URL: url, Err: err}
	}
}

// wrapContent word-wraps the passage text to the view width.
func (v *View) wrapContent() {
	if v.passage == nil || strings.TrimSpace(v.passage.Text) == "" {
		v.lines = nil
		return
	}

	contentWidth := max(v.width-4, 20)
	wrapped := lipgloss.NewStyle().Width(contentWidth).Render(v.passage.Text)

	v.lines = v.lines[:0]
	for _, line := range strings.Split(wrapped, "\n") {
		v.lines = append(v.lines, strings.TrimRight(line, " "))
	}
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for title, separator, link, help and padding
	return max(v.height-8, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the passage view.
func (v *View) View() string {
	var b strings.Builder

	title := "Passage"
	if v.passage != nil {
		title = fmt.Sprintf("[%d] %s, page %d", v.passage.Rank, v.passage.DocPath, v.passage.Loc.Page)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No text on this page)"))
		b.WriteString("\n")
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(services.Highlight(v.question, v.lines[i], v.styles.MarkTerm))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
			v.scrollOffset+1, min(v.scrollOffset+visible, len(v.lines)), len(v.lines))))
		b.WriteString("\n")
	}

	switch {
	case v.err != nil:
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.url != "":
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Document: "))
		b.WriteString(v.url)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [u] document link  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Passage returns the current passage.
func (v *View) Passage() *domain.Passage {
	return v.passage
}

// URL returns the loaded document link, if any.
func (v *View) URL() string {
	return v.url
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
