package config

import (
	"fmt"
	"strconv"
	"strings"
)

const legacyFormatWarning = "legacy key=value config format is deprecated; migrate to JSONC"

// Parse reads configuration content as JSONC (preferred) or legacy key/value format.
//
// JSONC is selected when the first non-whitespace character is `{`.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseJSONC(content, base)
	}

	cfg, warnings, err := parseLegacy(content, base)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append([]Warning{{Message: legacyFormatWarning}}, warnings...)
	return cfg, warnings, nil
}

// parseLegacy applies `key = value` lines over base. Unknown keys warn, bad
// values fail.
func parseLegacy(content string, base Config) (Config, []Warning, error) {
	cfg := base
	warnings := make([]Warning, 0)

	for lineNo, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			warnings = append(warnings, Warning{Line: lineNo + 1, Message: fmt.Sprintf("ignoring malformed line %q", line)})
			continue
		}
		key = strings.TrimSpace(strings.ToLower(key))
		value = strings.TrimSpace(value)

		if err := applyLegacyKey(&cfg, key, value); err != nil {
			if isUnknownKey(err) {
				warnings = append(warnings, Warning{Line: lineNo + 1, Message: err.Error()})
				continue
			}
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

type unknownKeyError struct{ key string }

func (e unknownKeyError) Error() string { return fmt.Sprintf("unknown config key %q", e.key) }

func isUnknownKey(err error) bool {
	_, ok := err.(unknownKeyError)
	return ok
}

func applyLegacyKey(cfg *Config, key, value string) error {
	switch key {
	case "server.url":
		cfg.Server.URL = value
	case "audio.input":
		cfg.Audio.Input = value
	case "audio.fallback":
		cfg.Audio.Fallback = value
	case "answer.window_seconds":
		return setInt(&cfg.Answer.WindowSeconds, key, value)
	case "answer.min_valid_bytes":
		return setInt(&cfg.Answer.MinValidBytes, key, value)
	case "fetch.max_retries":
		return setInt(&cfg.Fetch.MaxRetries, key, value)
	case "fetch.attempt_timeout_seconds":
		return setInt(&cfg.Fetch.AttemptTimeoutSeconds, key, value)
	case "fetch.retry_delay_ms":
		return setInt(&cfg.Fetch.RetryDelayMS, key, value)
	case "fetch.not_ready_delay_ms":
		return setInt(&cfg.Fetch.NotReadyDelayMS, key, value)
	case "readiness.poll_interval_ms":
		return setInt(&cfg.Readiness.PollIntervalMS, key, value)
	case "intro.enable":
		return setBool(&cfg.Intro.Enable, key, value)
	case "report.redirect_delay_seconds":
		return setInt(&cfg.Report.RedirectDelaySeconds, key, value)
	case "interview.num_questions":
		return setInt(&cfg.Interview.NumQuestions, key, value)
	case "interview.level":
		cfg.Interview.Level = value
	case "interview.topic":
		cfg.Interview.Topic = value
	case "interview.skills":
		cfg.Interview.Skills = splitList(value)
	case "interview.company":
		cfg.Interview.Company = value
	case "interview.role":
		cfg.Interview.Role = value
	case "debug.audio_dump":
		return setBool(&cfg.Debug.EnableAudioDump, key, value)
	default:
		return unknownKeyError{key: key}
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: expected integer, got %q", key, value)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return fmt.Errorf("%s: expected boolean, got %q", key, value)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
