// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours the TUI draws with. Each colour adapts to
// light and dark terminal backgrounds.
type Palette struct {
	Accent  lipgloss.AdaptiveColor // titles, answer rule, selection
	Cite    lipgloss.AdaptiveColor // [n] citation markers
	Mark    lipgloss.AdaptiveColor // query terms inside snippets
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor
	Good    lipgloss.AdaptiveColor // strong retrieval scores
	Caution lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor // status bar background
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	return &Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#5B3FA8", Dark: "#B4A0F0"},
		Cite:    lipgloss.AdaptiveColor{Light: "#0F7B8A", Dark: "#5FD7E0"},
		Mark:    lipgloss.AdaptiveColor{Light: "#B05A00", Dark: "#FFB454"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F1F28", Dark: "#DCD7BA"},
		Dim:     lipgloss.AdaptiveColor{Light: "#8A8A99", Dark: "#727169"},
		Good:    lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#98BB6C"},
		Caution: lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#E6C384"},
		Bad:     lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E46876"},
		Frame:   lipgloss.AdaptiveColor{Light: "#C8C8D0", Dark: "#54546D"},
		Bar:     lipgloss.AdaptiveColor{Light: "#EDEDF2", Dark: "#16161D"},
	}
}

// Score bands for colouring retrieval scores.
const (
	StrongScore = 0.75
	WeakScore   = 0.40
)

// Styles are the lipgloss styles the views render with.
type Styles struct {
	palette *Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Mark     lipgloss.Style
	Citation lipgloss.Style

	// Answer draws the synthesised answer behind a left rule.
	Answer lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds styles from p, or from DefaultPalette when p is nil.
func NewStyles(p *Palette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		palette:  p,
		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Cite).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Dim),
		Selected: fg(p.Bar).Background(p.Accent).Bold(true),
		Mark:     fg(p.Mark).Bold(true).Underline(true),
		Citation: fg(p.Cite).Bold(true),
		Answer: fg(p.Text).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(p.Accent).
			PaddingLeft(1),
		Error:   fg(p.Bad),
		Success: fg(p.Good),
		Warning: fg(p.Caution),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: fg(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:      fg(p.Dim),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame),
	}
}

// DefaultStyles returns styles built from the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the palette these styles were built from.
func (s *Styles) Palette() *Palette {
	return s.palette
}

// MarkTerm renders a matched query term.
func (s *Styles) MarkTerm(term string) string {
	return s.Mark.Render(term)
}

// ScoreStyle picks a style for a retrieval score by band.
func (s *Styles) ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= StrongScore:
		return s.Success
	case score >= WeakScore:
		return s.Warning
	default:
		return s.Muted
	}
}
