package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewAsk, "ask"},
		{ViewPassage, "passage"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_AskIsDefault(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewAsk, v)
}

func TestAskCompleted_CarriesPartialResult(t *testing.T) {
	msg := AskCompleted{
		Question: "q",
		Result: &domain.AskResult{
			Status:   domain.AnswerSynthesisTimeout,
			Passages: []domain.Passage{{Rank: 0}},
		},
	}

	assert.NoError(t, msg.Err)
	assert.Len(t, msg.Result.Passages, 1)
}

func TestErrorOccurred(t *testing.T) {
	err := errors.New("boom")
	msg := ErrorOccurred{Err: err}

	assert.Equal(t, err, msg.Err)
}
