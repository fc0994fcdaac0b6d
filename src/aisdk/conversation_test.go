package aisdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTurnsDoesNotMutateInput(t *testing.T) {
	history := make([]Turn, 1, 4)
	history[0] = Turn{Role: TurnUser, Text: "hi"}

	first := AppendTurns(history, Turn{Role: TurnAssistant, Text: "hello"})
	second := AppendTurns(history, Turn{Role: TurnAssistant, Text: "other"})

	require.Len(t, history, 1)
	assert.Equal(t, "hello", first[1].Text)
	assert.Equal(t, "other", second[1].Text)
}

func TestTurnsToMessages(t *testing.T) {
	messages := TurnsToMessages("be nice", []Turn{
		{Role: TurnUser, Text: "show me restaurants"},
		{Role: TurnAssistant, Text: "here you go"},
	})

	require.Len(t, messages, 3)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, "be nice", messages[0].Content)
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, RoleAssistant, messages[2].Role)

	assert.Len(t, TurnsToMessages("", nil), 0)
}
