// Package fsm defines the interview session phase machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateInitializing      State = "initializing"
	StateAwaitingReadiness State = "awaiting_readiness"
	StateIntroducingSystem State = "introducing_system"
	StateAskingIntro       State = "asking_intro_question"
	StateLoading           State = "loading"
	StatePlaying           State = "playing"
	StateRecording         State = "recording"
	StateSubmitting        State = "submitting"
	StateCompleted         State = "completed"
	StateErrored           State = "errored"
)

const (
	EventCaptureAcquired Event = "capture_acquired"
	EventReadyIntro      Event = "ready_intro"
	EventReadyFlat       Event = "ready_flat"
	EventIntroPlayed     Event = "intro_played"
	EventIntroAsked      Event = "intro_asked"
	EventQuestionLoaded  Event = "question_loaded"
	EventEndOfInterview  Event = "end_of_interview"
	EventPromptPlayed    Event = "prompt_played"
	EventAnswerKept      Event = "answer_kept"
	EventAnswerDiscarded Event = "answer_discarded"
	EventRepeatRequested Event = "repeat_requested"
	EventSubmitted       Event = "submitted"
	EventFail            Event = "fail"
)

// Transition applies one event to a phase. EventFail is absorbing into
// StateErrored from every state; StateErrored and StateCompleted are terminal.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateErrored, nil
	}

	switch current {
	case StateInitializing:
		if event == EventCaptureAcquired {
			return StateAwaitingReadiness, nil
		}
	case StateAwaitingReadiness:
		switch event {
		case EventReadyIntro:
			return StateIntroducingSystem, nil
		case EventReadyFlat:
			return StateLoading, nil
		}
	case StateIntroducingSystem:
		if event == EventIntroPlayed {
			return StateAskingIntro, nil
		}
	case StateAskingIntro:
		if event == EventIntroAsked {
			return StateRecording, nil
		}
	case StateLoading:
		switch event {
		case EventQuestionLoaded:
			return StatePlaying, nil
		case EventEndOfInterview:
			return StateCompleted, nil
		}
	case StatePlaying:
		if event == EventPromptPlayed {
			return StateRecording, nil
		}
	case StateRecording:
		switch event {
		case EventAnswerKept:
			return StateSubmitting, nil
		case EventAnswerDiscarded:
			return StateLoading, nil
		case EventRepeatRequested:
			return StatePlaying, nil
		}
	case StateSubmitting:
		if event == EventSubmitted {
			return StateLoading, nil
		}
	case StateCompleted, StateErrored:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}

	return current, invalidTransition(current, event)
}

// Terminal reports whether a state accepts no further events.
func Terminal(s State) bool {
	return s == StateCompleted || s == StateErrored
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
