package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptWindow_AlwaysStartsWithSystem(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("system prompt", 4)
	for i := 0; i < 50; i++ {
		tr.Append(RoleUser, fmt.Sprintf("msg %d", i))
	}

	w := tr.Window()
	require.NotEmpty(t, w)
	assert.Equal(t, RoleSystem, w[0].Role)
	assert.Equal(t, "system prompt", w[0].Content)
	assert.LessOrEqual(t, len(w), 1+4)
}

func TestTranscriptWindow_KeepsLastMessagesInOrder(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("sys", 3)
	for i := 0; i < 10; i++ {
		tr.Append(RoleUser, fmt.Sprintf("msg %d", i))
	}

	w := tr.Window()
	require.Len(t, w, 4)
	assert.Equal(t, "msg 7", w[1].Content)
	assert.Equal(t, "msg 8", w[2].Content)
	assert.Equal(t, "msg 9", w[3].Content)
}

func TestTranscriptWindow_ShortHistoryUntrimmed(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("sys", 16)
	tr.Append(RoleUser, "task")
	tr.Append(RoleAssistant, "reply")

	w := tr.Window()
	require.Len(t, w, 3)
	assert.Equal(t, RoleSystem, w[0].Role)
	assert.Equal(t, RoleUser, w[1].Role)
	assert.Equal(t, RoleAssistant, w[2].Role)
}

func TestTranscriptReset(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("sys", 16)
	for i := 0; i < 10; i++ {
		tr.Append(RoleAssistant, "noise")
	}

	tr.Reset("back to the task")
	require.Equal(t, 2, tr.Len())
	w := tr.Window()
	require.Len(t, w, 2)
	assert.Equal(t, RoleSystem, w[0].Role)
	assert.Equal(t, "sys", w[0].Content)
	assert.Equal(t, RoleUser, w[1].Role)
	assert.Equal(t, "back to the task", w[1].Content)
}

func TestTranscriptWindow_ReturnsCopy(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("sys", 16)
	tr.Append(RoleUser, "task")
	w := tr.Window()
	w[0].Content = "mutated"
	assert.Equal(t, "sys", tr.Window()[0].Content)
}
