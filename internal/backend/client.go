// Package backend speaks the interview server's HTTP JSON contract:
// session preparation, readiness polling, question fetching, answer
// submission, and prompt asset downloads.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionPreparationFailed is returned when the server reports a
	// terminal error while preparing the session.
	ErrSessionPreparationFailed = errors.New("session preparation failed")
	// ErrQuestionFetchExhausted is returned when the transport retry
	// budget for one question is spent.
	ErrQuestionFetchExhausted = errors.New("question fetch retries exhausted")
	// ErrQuestionUnavailable is returned when the server explicitly
	// rejects a question request in the response body.
	ErrQuestionUnavailable = errors.New("question unavailable")
	// ErrSubmissionFailed is returned for non-2xx answer submissions.
	ErrSubmissionFailed = errors.New("answer submission failed")
)

// Options tunes timing knobs; zero values take the server defaults used
// in production.
type Options struct {
	BaseURL           string
	MaxRetries        int
	AttemptTimeout    time.Duration
	RetryDelay        time.Duration
	NotReadyDelay     time.Duration
	ReadinessInterval time.Duration
	HTTPClient        *http.Client
}

// Client is a thin stateful wrapper over one interview server.
type Client struct {
	logger *slog.Logger

	baseURL           string
	maxRetries        int
	attemptTimeout    time.Duration
	retryDelay        time.Duration
	notReadyDelay     time.Duration
	readinessInterval time.Duration

	httpClient *http.Client
}

// New builds a client for the server at opts.BaseURL.
func New(logger *slog.Logger, opts Options) *Client {
	c := &Client{
		logger:            logger,
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		maxRetries:        opts.MaxRetries,
		attemptTimeout:    opts.AttemptTimeout,
		retryDelay:        opts.RetryDelay,
		notReadyDelay:     opts.NotReadyDelay,
		readinessInterval: opts.ReadinessInterval,
		httpClient:        opts.HTTPClient,
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 5
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = 30 * time.Second
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 2 * time.Second
	}
	if c.notReadyDelay <= 0 {
		c.notReadyDelay = 1500 * time.Millisecond
	}
	if c.readinessInterval <= 0 {
		c.readinessInterval = 2 * time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// BaseURL returns the configured server root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ReportURL returns the post-interview report location for a session.
func (c *Client) ReportURL(sessionID string) string {
	return fmt.Sprintf("%s/report/%s", c.baseURL, sessionID)
}

// Reachable probes the server root with a short timeout.
func (c *Client) Reachable(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := c.newRequest(probeCtx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe interview server: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// newRequest stamps every server call with a correlation id.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// sleepCtx waits d or until ctx cancels.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
