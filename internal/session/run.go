package session

import (
	"context"
	"errors"
	"time"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/backend"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/fsm"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/ui"
)

// recordOutcome tells the phase loop what to do after one answer window.
type recordOutcome int

const (
	outcomeAdvance recordOutcome = iota
	outcomeFatal
)

// Run executes one interview from device acquisition to completion. It
// returns when the session completes, fails terminally, or ctx cancels.
func (c *Controller) Run(ctx context.Context) (result Result) {
	result = Result{SessionID: c.opts.SessionID, StartedAt: time.Now()}
	defer func() {
		result.FinishedAt = time.Now()
		result.Completed, result.Skipped, result.Pending = c.board.Counts()
	}()

	c.view.SetControls(ui.ControlsInitializing)
	c.view.ShowStatus("Preparing your interview session...")

	if err := c.capture.Acquire(ctx); err != nil {
		return c.fail(result, err, "Microphone unavailable. Check audio settings and try again.")
	}
	defer c.capture.Release()

	if err := c.transition(fsm.EventCaptureAcquired); err != nil {
		return c.fail(result, err, "Session could not start.")
	}

	readiness, err := c.backend.WaitUntilReady(ctx, c.opts.SessionID)
	if err != nil {
		return c.fail(result, err, "Session preparation failed.")
	}

	c.view.RenderProgress(c.board.Markers())

	c.phased = c.opts.HasIntroductionPhase && readiness.Phased()
	nextIndex := 0
	if c.phased {
		if outcome := c.runIntroduction(ctx, &result, readiness); outcome == outcomeFatal {
			return result
		}
		if fsm.Terminal(c.Phase()) {
			return c.finish(ctx, result)
		}
		nextIndex = 1
	} else {
		if err := c.transition(fsm.EventReadyFlat); err != nil {
			return c.fail(result, err, "Session could not start.")
		}
	}

	for index := nextIndex; ; index++ {
		c.view.SetControls(ui.ControlsLoading)
		c.view.ShowStatus("Loading " + c.questionLabel(index) + "...")

		fetched, err := c.backend.FetchQuestion(ctx, c.opts.SessionID, index)
		if err != nil {
			return c.fail(result, err, "Failed to load the next question.")
		}
		if fetched.EndOfInterview {
			if err := c.transition(fsm.EventEndOfInterview); err != nil {
				return c.fail(result, err, "Session ended in an unexpected phase.")
			}
			return c.finish(ctx, result)
		}

		if err := c.transition(fsm.EventQuestionLoaded); err != nil {
			return c.fail(result, err, "Session ended in an unexpected phase.")
		}
		if err := c.board.Activate(index); err != nil {
			c.logger.Warn("progress activate failed", "question_index", index, "error", err)
		}
		c.view.ShowQuestion(c.questionLabel(index), fetched.Question.Text)
		c.view.RenderProgress(c.board.Markers())

		if outcome := c.playAndRecord(ctx, &result, fetched.Question); outcome == outcomeFatal {
			return result
		}
	}
}

// runIntroduction plays the system introduction and records the
// candidate's self-introduction (question index 0).
func (c *Controller) runIntroduction(ctx context.Context, result *Result, readiness backend.Readiness) recordOutcome {
	if err := c.transition(fsm.EventReadyIntro); err != nil {
		*result = c.fail(*result, err, "Session could not start.")
		return outcomeFatal
	}

	c.view.SetControls(ui.ControlsAISpeaking)
	c.view.ShowStatus("The interviewer is introducing the session...")
	if err := c.player.PlayPrompt(ctx, readiness.IntroAudioRef); err != nil {
		if ctx.Err() != nil {
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		}
		c.logger.Warn("introduction playback failed", "error", err)
	}
	if err := c.transition(fsm.EventIntroPlayed); err != nil {
		*result = c.fail(*result, err, "Session ended in an unexpected phase.")
		return outcomeFatal
	}

	intro := *readiness.IntroQuestion
	intro.Index = 0
	if err := c.board.Activate(0); err != nil {
		c.logger.Warn("progress activate failed", "question_index", 0, "error", err)
	}
	c.view.ShowQuestion(c.questionLabel(0), intro.Text)
	c.view.RenderProgress(c.board.Markers())

	c.view.ShowStatus("The interviewer is asking the introduction question...")
	if err := c.player.PlayPrompt(ctx, intro.AudioRef); err != nil {
		if ctx.Err() != nil {
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		}
		c.logger.Warn("introduction question playback failed", "error", err)
	}
	if err := c.transition(fsm.EventIntroAsked); err != nil {
		*result = c.fail(*result, err, "Session ended in an unexpected phase.")
		return outcomeFatal
	}

	return c.recordAnswer(ctx, result, intro)
}

// playAndRecord plays one question prompt then opens the answer window.
func (c *Controller) playAndRecord(ctx context.Context, result *Result, question backend.Question) recordOutcome {
	c.view.SetControls(ui.ControlsAISpeaking)
	c.view.ShowStatus("The interviewer is asking a question...")
	if err := c.player.PlayPrompt(ctx, question.AudioRef); err != nil {
		if ctx.Err() != nil {
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		}
		// Playback trouble is never fatal; the question text is on screen.
		c.logger.Warn("question playback failed", "question_index", question.Index, "error", err)
	}
	if err := c.transition(fsm.EventPromptPlayed); err != nil {
		*result = c.fail(*result, err, "Session ended in an unexpected phase.")
		return outcomeFatal
	}

	return c.recordAnswer(ctx, result, question)
}

// recordAnswer runs the bounded answer window for one question, handling
// stop, skip, repeat, expiry, and the submit-or-skip classification.
func (c *Controller) recordAnswer(ctx context.Context, result *Result, question backend.Question) recordOutcome {
	for {
		// A stale expiry or stop from a closed window is dropped; skip and
		// repeat queued during prompt playback stay pending for this window.
		select {
		case pending := <-c.actions:
			if pending == actionSkip || pending == actionRepeat {
				select {
				case c.actions <- pending:
				default:
				}
			}
		default:
		}

		if err := c.recorder.Begin(question.Index); err != nil {
			*result = c.fail(*result, err, "Could not start recording your answer.")
			return outcomeFatal
		}

		c.view.SetControls(ui.ControlsRecording)
		c.view.ShowStatus("Recording your answer. Run 'intervuai stop' when you are done.")
		c.timer.Start(c.opts.AnswerWindowSeconds, c.view.ShowTimer, func() {
			select {
			case c.actions <- actionExpire:
			default:
			}
		})

		var act action
		select {
		case <-ctx.Done():
			c.timer.Cancel()
			c.recorder.Abort()
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		case act = <-c.actions:
		}
		c.timer.Cancel()

		switch act {
		case actionSkip:
			c.recorder.Abort()
			if err := c.board.Skip(question.Index); err != nil {
				c.logger.Warn("progress skip failed", "question_index", question.Index, "error", err)
			}
			c.view.ShowStatus("Question skipped.")
			c.view.RenderProgress(c.board.Markers())
			if err := c.transition(fsm.EventAnswerDiscarded); err != nil {
				*result = c.fail(*result, err, "Session ended in an unexpected phase.")
				return outcomeFatal
			}
			return outcomeAdvance

		case actionRepeat:
			c.recorder.Abort()
			if err := c.transition(fsm.EventRepeatRequested); err != nil {
				*result = c.fail(*result, err, "Session ended in an unexpected phase.")
				return outcomeFatal
			}
			c.view.SetControls(ui.ControlsAISpeaking)
			c.view.ShowStatus("Repeating the question...")
			// Re-fetch the same index: the fetch is idempotent and may carry
			// an audio asset that was still generating the first time.
			if fetched, err := c.backend.FetchQuestion(ctx, c.opts.SessionID, question.Index); err != nil {
				if ctx.Err() != nil {
					*result = c.fail(*result, ctx.Err(), "Session cancelled.")
					return outcomeFatal
				}
				c.logger.Warn("question refetch failed", "question_index", question.Index, "error", err)
			} else if !fetched.EndOfInterview {
				fetched.Question.Index = question.Index
				question = fetched.Question
			}
			if err := c.player.PlayPrompt(ctx, question.AudioRef); err != nil {
				if ctx.Err() != nil {
					*result = c.fail(*result, ctx.Err(), "Session cancelled.")
					return outcomeFatal
				}
				c.logger.Warn("repeat playback failed", "question_index", question.Index, "error", err)
			}
			if err := c.transition(fsm.EventPromptPlayed); err != nil {
				*result = c.fail(*result, err, "Session ended in an unexpected phase.")
				return outcomeFatal
			}
			continue

		case actionStop, actionExpire:
			if act == actionExpire {
				c.view.ShowStatus("Time is up for this question.")
			}
			return c.closeAnswer(ctx, result, question)

		default:
			c.recorder.Abort()
			*result = c.fail(*result, errors.New("unknown session action"), "Session ended unexpectedly.")
			return outcomeFatal
		}
	}
}

// closeAnswer ends the take, then submits it or treats it as a skip.
func (c *Controller) closeAnswer(ctx context.Context, result *Result, question backend.Question) recordOutcome {
	recording, err := c.recorder.End()
	if err != nil {
		*result = c.fail(*result, err, "Could not finish recording your answer.")
		return outcomeFatal
	}

	if !recording.Substantive {
		if err := c.board.Skip(question.Index); err != nil {
			c.logger.Warn("progress skip failed", "question_index", question.Index, "error", err)
		}
		c.logger.Info("answer too short, skipping",
			"question_index", question.Index,
			"size_bytes", recording.SizeBytes,
		)
		c.view.ShowStatus("No answer detected. Moving on.")
		c.view.RenderProgress(c.board.Markers())
		if err := c.transition(fsm.EventAnswerDiscarded); err != nil {
			*result = c.fail(*result, err, "Session ended in an unexpected phase.")
			return outcomeFatal
		}
		return outcomeAdvance
	}

	// The question is answered from the candidate's point of view the
	// moment a substantive take exists, regardless of upload fate.
	if err := c.board.Complete(question.Index); err != nil {
		c.logger.Warn("progress complete failed", "question_index", question.Index, "error", err)
	}
	c.view.SetControls(ui.ControlsLoading)
	c.view.ShowStatus("Processing your answer...")
	c.view.RenderProgress(c.board.Markers())

	if err := c.transition(fsm.EventAnswerKept); err != nil {
		*result = c.fail(*result, err, "Session ended in an unexpected phase.")
		return outcomeFatal
	}

	if err := c.backend.SubmitAnswer(ctx, c.opts.SessionID, question.Index, recording.WAV); err != nil {
		if ctx.Err() != nil {
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		}
		// Advance-and-drop: the interview continues even when an upload
		// is lost, after a short pause so the message is readable.
		c.logger.Warn("answer submission failed",
			"question_index", question.Index,
			"error", err,
		)
		c.view.ShowStatus("Error submitting answer. Moving to the next question...")
		select {
		case <-ctx.Done():
			*result = c.fail(*result, ctx.Err(), "Session cancelled.")
			return outcomeFatal
		case <-time.After(c.opts.AdvanceDelay):
		}
	}

	if err := c.transition(fsm.EventSubmitted); err != nil {
		*result = c.fail(*result, err, "Session ended in an unexpected phase.")
		return outcomeFatal
	}
	return outcomeAdvance
}

// finish wraps up a completed interview and schedules the report handoff.
func (c *Controller) finish(ctx context.Context, result Result) Result {
	c.timer.Cancel()
	c.capture.Release()

	result.Phase = c.Phase()
	result.ReportURL = c.backend.ReportURL(c.opts.SessionID)

	c.view.SetControls(ui.ControlsFinished)
	c.view.RenderProgress(c.board.Markers())
	c.view.ShowStatus("Interview completed! Generating your personalized report...")
	c.logger.Info("interview completed",
		"session_id", c.opts.SessionID,
		"report_url", result.ReportURL,
	)

	if c.opts.RedirectDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(c.opts.RedirectDelay):
		}
	}
	return result
}

// fail moves the session to the absorbing error phase.
func (c *Controller) fail(result Result, err error, message string) Result {
	c.timer.Cancel()
	_ = c.transition(fsm.EventFail)

	result.Phase = c.Phase()
	result.Err = err

	c.view.SetControls(ui.ControlsError)
	c.view.ShowError(message)
	c.logger.Error("interview failed",
		"session_id", c.opts.SessionID,
		"phase", string(result.Phase),
		"error", err,
	)
	return result
}
