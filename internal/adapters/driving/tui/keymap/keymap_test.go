package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := map[string]struct {
		binding key.Binding
		keys    []string
	}{
		"quit":         {km.Quit, []string{"q", "ctrl+c"}},
		"help":         {km.Help, []string{"?"}},
		"back":         {km.Back, []string{"esc"}},
		"ask":          {km.Ask, []string{"enter"}},
		"recall":       {km.Recall, []string{"up", "down"}},
		"up":           {km.Up, []string{"up", "k"}},
		"down":         {km.Down, []string{"down", "j"}},
		"open":         {km.Open, []string{"enter"}},
		"new question": {km.NewQuestion, []string{"n"}},
		"document url": {km.DocumentURL, []string{"u"}},
		"page up":      {km.PageUp, []string{"pgup", "ctrl+u"}},
		"page down":    {km.PageDown, []string{"pgdown", "ctrl+d"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Key)
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Ask, km.Recall, km.Help, km.Quit}, km.ShortHelp())
	assert.Contains(t, km.PassagesHelp(), km.NewQuestion)
	assert.Contains(t, km.PassageHelp(), km.DocumentURL)

	full := km.FullHelp()
	require.Len(t, full, 4)
	for _, col := range full {
		assert.Len(t, col, 3)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.False(t, Matches("x", km.Quit))
	assert.True(t, Matches("j", km.Down))
	assert.False(t, Matches("", km.Down))
}
