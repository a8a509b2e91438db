package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/progress"
)

func TestTerminalRenderProgress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.RenderProgress([]progress.Marker{
		progress.MarkerCompleted,
		progress.MarkerSkipped,
		progress.MarkerActive,
		progress.MarkerPending,
	})

	require.Equal(t, "  [✓ – ● ○]\n", buf.String())
}

func TestTerminalQuestionAndTimer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.ShowQuestion("Question 2 of 5", "What is a goroutine?")
	term.ShowTimer(65)

	out := buf.String()
	require.Contains(t, out, "Question 2 of 5")
	require.Contains(t, out, "What is a goroutine?")
	require.Contains(t, out, "01:05")
}

func TestControlStateStringAndHint(t *testing.T) {
	t.Parallel()

	require.Equal(t, "recording", ControlsRecording.String())
	require.Equal(t, "ai_speaking", ControlsAISpeaking.String())
	require.Contains(t, ControlsRecording.Hint(), "skip")
	require.Empty(t, ControlsLoading.Hint())
}
