package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// questionPayload is the raw get_question response envelope.
type questionPayload struct {
	Question
	Status         string `json:"status,omitempty"`
	EndOfInterview bool   `json:"end_of_interview,omitempty"`
	Error          string `json:"error,omitempty"`
}

// FetchQuestion retrieves one question inside the bounded retry envelope.
// Transport failures and unexpected statuses consume the retry budget;
// not-ready responses re-poll indefinitely because generation latency is
// unbounded and does not indicate a transport problem. An explicit error
// marker in the body fails immediately, and end_of_interview is a
// successful terminal result.
func (c *Client) FetchQuestion(ctx context.Context, sessionID string, index int) (QuestionResult, error) {
	url := fmt.Sprintf("%s/get_question/%s/%d", c.baseURL, sessionID, index)

	attempt := 0
	for attempt < c.maxRetries {
		payload, httpStatus, err := c.fetchQuestionOnce(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return QuestionResult{}, ctx.Err()
			}
			attempt++
			c.logger.Warn("question fetch attempt failed",
				"session_id", sessionID,
				"question_index", index,
				"attempt", attempt,
				"error", err,
			)
			if attempt >= c.maxRetries {
				break
			}
			if sleepErr := sleepCtx(ctx, c.retryDelay); sleepErr != nil {
				return QuestionResult{}, sleepErr
			}
			continue
		}

		if httpStatus == http.StatusAccepted &&
			(payload.Status == "generating_questions" || payload.Status == "not_ready") {
			c.logger.Debug("question not generated yet",
				"session_id", sessionID,
				"question_index", index,
				"status", payload.Status,
			)
			if sleepErr := sleepCtx(ctx, c.notReadyDelay); sleepErr != nil {
				return QuestionResult{}, sleepErr
			}
			continue
		}

		if payload.EndOfInterview {
			c.logger.Info("end of interview reached", "session_id", sessionID, "question_index", index)
			return QuestionResult{EndOfInterview: true}, nil
		}
		if payload.Error != "" {
			return QuestionResult{}, fmt.Errorf("%w: %s", ErrQuestionUnavailable, payload.Error)
		}

		question := payload.Question
		question.Index = index
		return QuestionResult{Question: question}, nil
	}

	return QuestionResult{}, fmt.Errorf("%w: question %d after %d attempts", ErrQuestionFetchExhausted, index, c.maxRetries)
}

// fetchQuestionOnce performs a single bounded request/decode round trip.
func (c *Client) fetchQuestionOnce(ctx context.Context, url string) (questionPayload, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := c.newRequest(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return questionPayload{}, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return questionPayload{}, 0, fmt.Errorf("fetch question: %w", err)
	}
	defer resp.Body.Close()

	// 404 carries the error/end_of_interview envelope; other non-2xx
	// statuses are transport-class failures.
	if resp.StatusCode >= 500 || (resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound) {
		return questionPayload{}, resp.StatusCode, fmt.Errorf("fetch question: server responded %d", resp.StatusCode)
	}

	var payload questionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return questionPayload{}, resp.StatusCode, fmt.Errorf("decode question: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound && payload.Error == "" && !payload.EndOfInterview {
		return questionPayload{}, resp.StatusCode, fmt.Errorf("fetch question: server responded %d", resp.StatusCode)
	}
	return payload, resp.StatusCode, nil
}
