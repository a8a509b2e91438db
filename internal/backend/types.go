package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Question is one interview prompt. Index 0 is the candidate introduction
// in phased sessions.
type Question struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	AudioRef string `json:"audio_url"`
}

// QuestionResult carries either a question or the end-of-interview signal.
type QuestionResult struct {
	Question       Question
	EndOfInterview bool
}

// StatusPayload is the raw session_status response.
type StatusPayload struct {
	Status          string    `json:"status"`
	ReconIntroAudio string    `json:"recon_intro_audio,omitempty"`
	IntroQuestion   *Question `json:"intro_question,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// Readiness is the resolved outcome of the readiness poll.
type Readiness struct {
	Status        string
	IntroAudioRef string
	IntroQuestion *Question
}

// Phased reports whether the server supplied introduction assets; without
// both pieces the session falls back to the flat question flow.
func (r Readiness) Phased() bool {
	return r.IntroAudioRef != "" && r.IntroQuestion != nil
}

// PrepareRequest is the interview configuration sent to prepare_session.
// Exactly one of Skills, Company+Role, or Topic selects the prompt style.
type PrepareRequest struct {
	NumQuestions int      `json:"num_questions"`
	Level        string   `json:"level"`
	Skills       []string `json:"skills,omitempty"`
	Company      string   `json:"company,omitempty"`
	Role         string   `json:"role,omitempty"`
	Topic        string   `json:"topic,omitempty"`
}

// Prepared is the prepare_session response the client persists.
type Prepared struct {
	SessionID    string  `json:"session_id"`
	NumQuestions flexInt `json:"num_questions"`
}

// flexInt decodes ints the server sometimes echoes back as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parse num_questions %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// Int converts back to a plain int for callers.
func (f flexInt) Int() int {
	return int(f)
}
