// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/services"
)

// linesPerPassage is the height of one rendered entry.
const linesPerPassage = 3

// PassageList displays retrieved passages in a navigable list.
type PassageList struct {
	passages []domain.Passage
	question string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *PassageList) View() string {
	if len(l.passages) == 0 {
		return l.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(l.passages)*linesPerPassage+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.passages))), "")

	visible := max((l.height-4)/linesPerPassage, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.passages))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderPassage(i, &l.passages[i]))
	}

	return strings.Join(lines, "\n")
}

// renderPassage formats one passage: citation, document, page and score,
// then a highlighted snippet.
func (l *PassageList) renderPassage(index int, p *domain.Passage) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	marker := fmt.Sprintf("[%d]", p.Rank)
	title := fmt.Sprintf("%s p.%d", p.DocPath, p.Loc.Page)
	maxTitle := max(l.width-24, 10)
	if len([]rune(title)) > maxTitle {
		title = "..." + string([]rune(title)[len([]rune(title))-maxTitle+3:])
	}
	score := fmt.Sprintf("%.3f", p.Score)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%s %-*s  %s", indicator, marker, maxTitle, title, score))
	} else {
		titleLine = indicator + l.styles.Citation.Render(marker) + " " +
			l.styles.Normal.Render(fmt.Sprintf("%-*s  ", maxTitle, title)) +
			l.styles.ScoreStyle(p.Score).Render(score)
	}

	snippet := services.Snippet(p.Text, max(l.width-8, 20))
	snippet = services.Highlight(l.question, snippet, l.styles.MarkTerm)

	return titleLine + "\n" + "    " + snippet
}

// SetPassages replaces the list content. question drives term highlighting.
func (l *PassageList) SetPassages(question string, passages []domain.Passage) {
	l.question = question
	l.passages = passages
	l.selected = 0
}

// Passages returns the current passages.
func (l *PassageList) Passages() []domain.Passage {
	return l.passages
}

// Selected returns the index of the selected passage.
func (l *PassageList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *PassageList) SetSelected(index int) {
	if index >= 0 && index < len(l.passages) {
		l.selected = index
	}
}

// SelectedPassage returns the selected passage, or nil if none.
func (l *PassageList) SelectedPassage() *domain.Passage {
	if l.selected < 0 || l.selected >= len(l.passages) {
		return nil
	}
	return &l.passages[l.selected]
}

// MoveUp moves selection up.
func (l *PassageList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *PassageList) MoveDown() {
	if l.selected < len(l.passages)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *PassageList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of passages.
func (l *PassageList) Count() int {
	return len(l.passages)
}

// IsEmpty returns whether the list is empty.
func (l *PassageList) IsEmpty() bool {
	return len(l.passages) == 0
}
