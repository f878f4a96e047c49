package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightTerms(t *testing.T) {
	terms := HighlightTerms("Why do CATS sleep so much? cats!")

	assert.Equal(t, []string{"sleep", "cats", "much"}, terms)
	assert.Empty(t, HighlightTerms("a an the"))
}

func TestHighlight(t *testing.T) {
	mark := func(s string) string { return "<" + s + ">" }

	got := Highlight("sleeping cats", "Cats are sleeping; the cat sleeps.", mark)

	assert.Equal(t, "<Cats> are <sleeping>; the cat sleeps.", got)
	assert.Equal(t, "unchanged", Highlight("a b", "unchanged", mark))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "one two three", Snippet("one\n two\t\tthree", 50))
	assert.Equal(t, "alpha beta …", Snippet("alpha beta gamma delta", 13))
	assert.Equal(t, "abc", Snippet("abc", 0))
}
