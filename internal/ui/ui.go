// Package ui renders session progress to the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/progress"
)

// ControlState mirrors which session actions are currently meaningful.
type ControlState int

const (
	ControlsInitializing ControlState = iota
	ControlsLoading
	ControlsAISpeaking
	ControlsRecording
	ControlsFinished
	ControlsError
)

// String returns the state name used in status responses.
func (s ControlState) String() string {
	switch s {
	case ControlsInitializing:
		return "initializing"
	case ControlsLoading:
		return "loading"
	case ControlsAISpeaking:
		return "ai_speaking"
	case ControlsRecording:
		return "recording"
	case ControlsFinished:
		return "finished"
	case ControlsError:
		return "error"
	default:
		return fmt.Sprintf("controls(%d)", int(s))
	}
}

// Hint lists the subcommands that do something in this state.
func (s ControlState) Hint() string {
	switch s {
	case ControlsAISpeaking:
		return "repeat available"
	case ControlsRecording:
		return "stop, skip available"
	default:
		return ""
	}
}

// Terminal writes session updates as plain lines, one event per line, so
// the interview can run under a pipe or a plain console equally well.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal renders to out, typically os.Stdout.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// ShowStatus prints a transient status message.
func (t *Terminal) ShowStatus(message string) {
	t.printf("%s\n", message)
}

// ShowQuestion prints the prompt heading and text.
func (t *Terminal) ShowQuestion(label string, text string) {
	t.printf("\n%s\n  %s\n", label, text)
}

// ShowTimer prints the remaining answer window.
func (t *Terminal) ShowTimer(secondsRemaining int) {
	t.printf("\r  time remaining: %02d:%02d ", secondsRemaining/60, secondsRemaining%60)
}

// RenderProgress prints one dot per question slot.
func (t *Terminal) RenderProgress(markers []progress.Marker) {
	var b strings.Builder
	b.WriteString("  [")
	for i, m := range markers {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(dotFor(m))
	}
	b.WriteString("]\n")
	t.printf("%s", b.String())
}

// SetControls prints the action hint for the new state.
func (t *Terminal) SetControls(state ControlState) {
	if hint := state.Hint(); hint != "" {
		t.printf("  (%s)\n", hint)
	}
}

// ShowError prints a fatal session message.
func (t *Terminal) ShowError(message string) {
	t.printf("error: %s\n", message)
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func dotFor(m progress.Marker) string {
	switch m {
	case progress.MarkerActive:
		return "●"
	case progress.MarkerCompleted:
		return "✓"
	case progress.MarkerSkipped:
		return "–"
	default:
		return "○"
	}
}
