package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

// PrepareSession asks the server to generate questions in the background
// and returns the session handle to persist.
func (c *Client) PrepareSession(ctx context.Context, prep PrepareRequest) (Prepared, error) {
	body, err := json.Marshal(prep)
	if err != nil {
		return Prepared{}, fmt.Errorf("encode prepare request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/prepare_session", bytes.NewReader(body))
	if err != nil {
		return Prepared{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prepared{}, fmt.Errorf("prepare session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Prepared{}, fmt.Errorf("%w: server responded %d", ErrSessionPreparationFailed, resp.StatusCode)
	}

	var prepared Prepared
	if err := json.NewDecoder(resp.Body).Decode(&prepared); err != nil {
		return Prepared{}, fmt.Errorf("decode prepare response: %w", err)
	}
	if prepared.SessionID == "" {
		return Prepared{}, fmt.Errorf("%w: response missing session_id", ErrSessionPreparationFailed)
	}

	c.logger.Info("session prepared",
		"session_id", prepared.SessionID,
		"num_questions", prepared.NumQuestions.Int(),
	)
	return prepared, nil
}

// SessionStatus issues one readiness probe.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (StatusPayload, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := c.newRequest(attemptCtx, http.MethodGet, fmt.Sprintf("%s/session_status/%s", c.baseURL, sessionID), nil)
	if err != nil {
		return StatusPayload{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusPayload{}, fmt.Errorf("session status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusPayload{}, fmt.Errorf("session status: server responded %d", resp.StatusCode)
	}

	var payload StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return StatusPayload{}, fmt.Errorf("decode session status: %w", err)
	}
	return payload, nil
}

// WaitUntilReady polls session_status until a terminal tag appears.
// Preparation time is unbounded, so only ctx cancellation or the two
// terminal tags (ready/intro_ready, error) end the loop. Transient
// transport failures are logged and retried like pending statuses.
func (c *Client) WaitUntilReady(ctx context.Context, sessionID string) (Readiness, error) {
	for {
		payload, err := c.SessionStatus(ctx, sessionID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return Readiness{}, ctx.Err()
			}
			c.logger.Warn("readiness poll failed", "session_id", sessionID, "error", err)
		case payload.Status == "error":
			message := payload.Error
			if message == "" {
				message = "server reported an unspecified preparation error"
			}
			return Readiness{}, fmt.Errorf("%w: %s", ErrSessionPreparationFailed, message)
		case payload.Status == "ready" || payload.Status == "intro_ready":
			c.logger.Info("session ready",
				"session_id", sessionID,
				"status", payload.Status,
				"phased", payload.ReconIntroAudio != "" && payload.IntroQuestion != nil,
			)
			return Readiness{
				Status:        payload.Status,
				IntroAudioRef: payload.ReconIntroAudio,
				IntroQuestion: payload.IntroQuestion,
			}, nil
		default:
			c.logger.Debug("session not ready", "session_id", sessionID, "status", payload.Status)
		}

		if err := sleepCtx(ctx, c.readinessInterval); err != nil {
			return Readiness{}, err
		}
	}
}

// SubmitAnswer uploads one answer WAV as a multipart form. The response
// body is opaque; only the status code matters.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, questionIndex int, wav []byte) error {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="audio"; filename="answer.wav"`)
	header.Set("Content-Type", "audio/wav")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build answer form: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return fmt.Errorf("write answer audio: %w", err)
	}
	if err := writer.WriteField("question_index", strconv.Itoa(questionIndex)); err != nil {
		return fmt.Errorf("write question index: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish answer form: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/interview_session/%s/submit_answer", c.baseURL, sessionID)
	req, err := c.newRequest(attemptCtx, http.MethodPost, url, &form)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: server responded %d", ErrSubmissionFailed, resp.StatusCode)
	}

	c.logger.Info("answer submitted",
		"session_id", sessionID,
		"question_index", questionIndex,
		"size_bytes", len(wav),
	)
	return nil
}
