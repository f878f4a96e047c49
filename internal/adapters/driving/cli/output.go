package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/services"
)

// snippetLength bounds passage text in table output.
const snippetLength = 240

var (
	markStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A623"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D"))
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styler applies a style only when writing to a terminal.
type styler struct {
	enabled bool
}

func newStyler(cmd *cobra.Command) styler {
	return styler{enabled: isTerminal(cmd.OutOrStdout())}
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// mark highlights a matched query term. Plain output uses *term*.
func (s styler) mark(term string) string {
	if !s.enabled {
		return "*" + term + "*"
	}
	return markStyle.Render(term)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printPassages writes passages as [rank] lines with highlighted snippets.
func printPassages(cmd *cobra.Command, question string, passages []domain.Passage) {
	st := newStyler(cmd)
	for i := range passages {
		p := passages[i]
		header := fmt.Sprintf("[%d] %s, page %d", p.Rank, p.DocPath, p.Loc.Page)
		cmd.Printf("  %s %s\n", st.render(titleStyle, header), st.render(dimStyle, fmt.Sprintf("(%.3f)", p.Score)))
		snippet := services.Snippet(p.Text, snippetLength)
		if snippet != "" {
			cmd.Printf("      %s\n", services.Highlight(question, snippet, st.mark))
		}
		cmd.Println()
	}
}
