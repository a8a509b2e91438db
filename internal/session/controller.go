// Package session coordinates the interview lifecycle: readiness, prompt
// playback, timed answer capture, submission, and progress.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/backend"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/fsm"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/ipc"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/progress"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/recorder"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/ui"
)

type action int

const (
	actionStop action = iota + 1
	actionSkip
	actionRepeat
	actionExpire
)

// Backend is the server contract slice the controller drives.
type Backend interface {
	WaitUntilReady(ctx context.Context, sessionID string) (backend.Readiness, error)
	FetchQuestion(ctx context.Context, sessionID string, index int) (backend.QuestionResult, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionIndex int, wav []byte) error
	ReportURL(sessionID string) string
}

// CaptureDevice owns the microphone for the session lifetime.
type CaptureDevice interface {
	Acquire(ctx context.Context) error
	Release()
}

// AnswerRecorder buffers one answer take at a time.
type AnswerRecorder interface {
	Begin(questionIndex int) error
	End() (recorder.Recording, error)
	Abort()
}

// PromptPlayer plays one prompt reference with the microphone muted.
type PromptPlayer interface {
	PlayPrompt(ctx context.Context, ref string) error
}

// AnswerTimer bounds the answer window.
type AnswerTimer interface {
	Start(seconds int, onTick func(remaining int), onExpire func())
	Cancel()
}

// Projection receives user-visible session updates.
type Projection interface {
	ShowStatus(message string)
	ShowQuestion(label string, text string)
	ShowTimer(secondsRemaining int)
	RenderProgress(markers []progress.Marker)
	SetControls(state ui.ControlState)
	ShowError(message string)
}

// noopProjection preserves session flow when no renderer is wired.
type noopProjection struct{}

func (noopProjection) ShowStatus(string)                {}
func (noopProjection) ShowQuestion(string, string)      {}
func (noopProjection) ShowTimer(int)                    {}
func (noopProjection) RenderProgress([]progress.Marker) {}
func (noopProjection) SetControls(ui.ControlState)      {}
func (noopProjection) ShowError(string)                 {}

// Options parameterizes one interview run.
type Options struct {
	SessionID            string
	TotalQuestions       int
	HasIntroductionPhase bool
	AnswerWindowSeconds  int
	// AdvanceDelay is the pause before moving on after a failed submission.
	AdvanceDelay time.Duration
	// RedirectDelay is the pause between completion and the report handoff.
	RedirectDelay time.Duration
}

// Result is the lifecycle output of one Run invocation.
type Result struct {
	Phase      fsm.State
	SessionID  string
	ReportURL  string
	Completed  int
	Skipped    int
	Pending    int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Controller orchestrates interview phase transitions and side effects.
type Controller struct {
	logger   *slog.Logger
	opts     Options
	backend  Backend
	capture  CaptureDevice
	recorder AnswerRecorder
	player   PromptPlayer
	timer    AnswerTimer
	view     Projection
	board    *progress.Board

	mu    sync.RWMutex
	phase fsm.State

	// phased is resolved from readiness once per run, before the phase loop.
	phased bool

	actions chan action
}

// NewController wires a controller over its collaborators.
func NewController(
	logger *slog.Logger,
	opts Options,
	srv Backend,
	capture CaptureDevice,
	rec AnswerRecorder,
	player PromptPlayer,
	answerTimer AnswerTimer,
	view Projection,
) *Controller {
	if view == nil {
		view = noopProjection{}
	}
	if opts.AnswerWindowSeconds <= 0 {
		opts.AnswerWindowSeconds = 120
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = 2 * time.Second
	}
	if opts.RedirectDelay < 0 {
		opts.RedirectDelay = 0
	}

	return &Controller{
		logger:   logger,
		opts:     opts,
		backend:  srv,
		capture:  capture,
		recorder: rec,
		player:   player,
		timer:    answerTimer,
		view:     view,
		board:    progress.NewBoard(opts.TotalQuestions),
		phase:    fsm.StateInitializing,
		actions:  make(chan action, 1),
	}
}

// Phase returns the current phase snapshot.
func (c *Controller) Phase() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// transition applies one phase event.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.phase, event)
	if err != nil {
		return err
	}
	c.logger.Debug("phase transition", "from", string(c.phase), "event", string(event), "to", string(next))
	c.phase = next
	return nil
}

// Handle serves IPC commands for the active session owner.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, Phase: string(c.Phase()), Message: "status"}
	case "stop":
		return c.enqueue(actionStop, "stop")
	case "skip":
		return c.enqueue(actionSkip, "skip")
	case "repeat":
		return c.enqueue(actionRepeat, "repeat")
	default:
		return ipc.Response{OK: false, Phase: string(c.Phase()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// enqueue admits stop while an answer is being recorded. Skip and repeat
// are additionally valid while the prompt is playing; they queue up and
// take effect once playback resolves.
func (c *Controller) enqueue(a action, source string) ipc.Response {
	phase := c.Phase()
	allowed := phase == fsm.StateRecording ||
		(phase == fsm.StatePlaying && (a == actionSkip || a == actionRepeat))
	if !allowed {
		return ipc.Response{OK: false, Phase: string(phase), Error: fmt.Sprintf("cannot %s from phase %s", source, phase)}
	}

	select {
	case c.actions <- a:
		return ipc.Response{OK: true, Phase: string(phase), Message: source + " requested"}
	default:
		return ipc.Response{OK: true, Phase: string(phase), Message: "action already requested"}
	}
}

// questionLabel formats the prompt heading. In a phased session index 0 is
// the introduction and visible numbering excludes it; flat sessions number
// from 1 with the full question count.
func (c *Controller) questionLabel(index int) string {
	if c.phased {
		if index == 0 {
			return "Introduction"
		}
		return fmt.Sprintf("Question %d of %d", index, c.opts.TotalQuestions-1)
	}
	return fmt.Sprintf("Question %d of %d", index+1, c.opts.TotalQuestions)
}
