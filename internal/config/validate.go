package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	serverURL := strings.TrimSpace(cfg.Server.URL)
	if serverURL == "" {
		return nil, fmt.Errorf("server.url must not be empty")
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("server.url must start with http:// or https://")
	}

	if cfg.Answer.WindowSeconds <= 0 {
		return nil, fmt.Errorf("answer.window_seconds must be > 0")
	}
	if cfg.Answer.MinValidBytes < 0 {
		return nil, fmt.Errorf("answer.min_valid_bytes must be >= 0")
	}

	if cfg.Fetch.MaxRetries <= 0 {
		return nil, fmt.Errorf("fetch.max_retries must be > 0")
	}
	if cfg.Fetch.AttemptTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("fetch.attempt_timeout_seconds must be > 0")
	}
	if cfg.Fetch.RetryDelayMS < 0 {
		return nil, fmt.Errorf("fetch.retry_delay_ms must be >= 0")
	}
	if cfg.Fetch.NotReadyDelayMS <= 0 {
		return nil, fmt.Errorf("fetch.not_ready_delay_ms must be > 0")
	}

	if cfg.Readiness.PollIntervalMS <= 0 {
		return nil, fmt.Errorf("readiness.poll_interval_ms must be > 0")
	}

	if cfg.Report.RedirectDelaySeconds < 0 {
		return nil, fmt.Errorf("report.redirect_delay_seconds must be >= 0")
	}

	if cfg.Interview.NumQuestions < 1 {
		return nil, fmt.Errorf("interview.num_questions must be >= 1")
	}
	if strings.TrimSpace(cfg.Interview.Level) == "" {
		return nil, fmt.Errorf("interview.level must not be empty")
	}

	if cfg.Answer.WindowSeconds > 600 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("answer.window_seconds=%d is unusually long", cfg.Answer.WindowSeconds)})
	}

	return warnings, nil
}
