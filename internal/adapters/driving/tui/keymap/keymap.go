// Package keymap holds the TUI key bindings and the hint groups shown for
// each mode.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is every binding the TUI reacts to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Question input.
	Ask    key.Binding
	Recall key.Binding

	// Passage list.
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	NewQuestion key.Binding

	// Passage reader.
	DocumentURL key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
}

func bind(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Ask:    bind("enter", "ask", "enter"),
		Recall: bind("↑/↓", "earlier questions", "up", "down"),

		Up:          bind("↑/k", "up", "up", "k"),
		Down:        bind("↓/j", "down", "down", "j"),
		Open:        bind("enter", "read", "enter"),
		NewQuestion: bind("n", "new question", "n"),

		DocumentURL: bind("u", "document link", "u"),
		PageUp:      bind("pgup", "page up", "pgup", "ctrl+u"),
		PageDown:    bind("pgdn", "page down", "pgdown", "ctrl+d"),
	}
}

// ShortHelp is shown while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Recall, k.Help, k.Quit}
}

// PassagesHelp is shown while browsing the passages of an answer.
func (k *KeyMap) PassagesHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Open, k.Back}
}

// PassageHelp is shown while reading one passage.
func (k *KeyMap) PassageHelp() []key.Binding {
	return []key.Binding{k.Up, k.PageDown, k.DocumentURL, k.Back}
}

// FullHelp is the help screen, one column per mode.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.Recall, k.NewQuestion},
		{k.Up, k.Down, k.Open},
		{k.PageUp, k.PageDown, k.DocumentURL},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches reports whether keyStr, as produced by tea.KeyMsg.String, is one
// of binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
