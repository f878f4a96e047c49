package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/mediamind/internal/adapters/driving/tui/views/passage"
	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// App is the root tea.Model. It owns the ask and passage views and
// switches between them and the help screen.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	askView     *ask.View
	passageView *passage.View
	currentView messages.ViewType

	err           error
	width, height int
	ready         bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds the app around ports. Only the answer port is required.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = s.Citation
	h.Styles.FullDesc = s.Normal
	h.Styles.FullSeparator = s.Muted

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        h,
		askView:     ask.NewView(s, km, ports.Answer),
		passageView: passage.NewView(s, km, ports.Preview),
		currentView: messages.ViewAsk,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.passageView.WithContext(ctx)
	return a
}

// WithTopK sets how many passages each question retrieves.
func (a *App) WithTopK(k int) *App {
	a.askView.WithTopK(k)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("mediamind"),
		a.askView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
			a.err = a.askView.Err()
		case messages.ViewPassage:
			a.passageView, cmd = a.passageView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "?" {
				a.currentView = messages.ViewAsk
			}
		}
		return a, cmd

	case messages.AskCompleted:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.PassageSelected:
		a.passageView.SetPassage(msg.Question, msg.Passage)
		a.currentView = messages.ViewPassage
		return a, nil

	case messages.DocumentURLLoaded:
		a.passageView, cmd = a.passageView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
		case messages.ViewPassage:
			a.passageView, cmd = a.passageView.Update(msg)
		case messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (spinner ticks, cursor blink) to the active view
	switch a.currentView {
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewPassage:
		a.passageView, cmd = a.passageView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewPassage:
		return a.passageView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.askView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	a.help.Width = a.width
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.View(a.keymap) + "\n\n" +
		a.styles.Muted.Render("Esc on an empty question quits. Scores are inner-product similarity, higher is closer.") + "\n\n" +
		a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Result returns the last answer, or nil.
func (a *App) Result() *domain.AskResult {
	return a.askView.Result()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.askView.SetDimensions(width, height)
	a.passageView.SetDimensions(width, height)
}
