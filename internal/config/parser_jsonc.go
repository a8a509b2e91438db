package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Server    *jsoncServer    `json:"server"`
	Audio     *jsoncAudio     `json:"audio"`
	Answer    *jsoncAnswer    `json:"answer"`
	Fetch     *jsoncFetch     `json:"fetch"`
	Readiness *jsoncReadiness `json:"readiness"`
	Intro     *jsoncIntro     `json:"intro"`
	Report    *jsoncReport    `json:"report"`
	Interview *jsoncInterview `json:"interview"`
	Debug     *jsoncDebug     `json:"debug"`
}

type jsoncServer struct {
	URL *string `json:"url"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncAnswer struct {
	WindowSeconds *int `json:"window_seconds"`
	MinValidBytes *int `json:"min_valid_bytes"`
}

type jsoncFetch struct {
	MaxRetries            *int `json:"max_retries"`
	AttemptTimeoutSeconds *int `json:"attempt_timeout_seconds"`
	RetryDelayMS          *int `json:"retry_delay_ms"`
	NotReadyDelayMS       *int `json:"not_ready_delay_ms"`
}

type jsoncReadiness struct {
	PollIntervalMS *int `json:"poll_interval_ms"`
}

type jsoncIntro struct {
	Enable *bool `json:"enable"`
}

type jsoncReport struct {
	RedirectDelaySeconds *int `json:"redirect_delay_seconds"`
}

type jsoncInterview struct {
	NumQuestions *int             `json:"num_questions"`
	Level        *string          `json:"level"`
	Topic        *string          `json:"topic"`
	Skills       *jsoncStringList `json:"skills"`
	Company      *string          `json:"company"`
	Role         *string          `json:"role"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = splitList(single)
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return Config{}, nil, errors.New("invalid JSONC config: trailing content after document")
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.Server != nil && payload.Server.URL != nil {
		cfg.Server.URL = strings.TrimSpace(*payload.Server.URL)
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if payload.Answer != nil {
		if payload.Answer.WindowSeconds != nil {
			cfg.Answer.WindowSeconds = *payload.Answer.WindowSeconds
		}
		if payload.Answer.MinValidBytes != nil {
			cfg.Answer.MinValidBytes = *payload.Answer.MinValidBytes
		}
	}

	if payload.Fetch != nil {
		if payload.Fetch.MaxRetries != nil {
			cfg.Fetch.MaxRetries = *payload.Fetch.MaxRetries
		}
		if payload.Fetch.AttemptTimeoutSeconds != nil {
			cfg.Fetch.AttemptTimeoutSeconds = *payload.Fetch.AttemptTimeoutSeconds
		}
		if payload.Fetch.RetryDelayMS != nil {
			cfg.Fetch.RetryDelayMS = *payload.Fetch.RetryDelayMS
		}
		if payload.Fetch.NotReadyDelayMS != nil {
			cfg.Fetch.NotReadyDelayMS = *payload.Fetch.NotReadyDelayMS
		}
	}

	if payload.Readiness != nil && payload.Readiness.PollIntervalMS != nil {
		cfg.Readiness.PollIntervalMS = *payload.Readiness.PollIntervalMS
	}

	if payload.Intro != nil && payload.Intro.Enable != nil {
		cfg.Intro.Enable = *payload.Intro.Enable
	}

	if payload.Report != nil && payload.Report.RedirectDelaySeconds != nil {
		cfg.Report.RedirectDelaySeconds = *payload.Report.RedirectDelaySeconds
	}

	if payload.Interview != nil {
		if payload.Interview.NumQuestions != nil {
			cfg.Interview.NumQuestions = *payload.Interview.NumQuestions
		}
		if payload.Interview.Level != nil {
			cfg.Interview.Level = strings.TrimSpace(*payload.Interview.Level)
		}
		if payload.Interview.Topic != nil {
			cfg.Interview.Topic = strings.TrimSpace(*payload.Interview.Topic)
		}
		if payload.Interview.Skills != nil {
			cfg.Interview.Skills = *payload.Interview.Skills
		}
		if payload.Interview.Company != nil {
			cfg.Interview.Company = strings.TrimSpace(*payload.Interview.Company)
		}
		if payload.Interview.Role != nil {
			cfg.Interview.Role = strings.TrimSpace(*payload.Interview.Role)
		}
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.EnableAudioDump = *payload.Debug.AudioDump
	}
}

// normalizeJSONC strips // and /* */ comments plus trailing commas so the
// result is plain JSON. String contents are preserved byte for byte.
func normalizeJSONC(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	const (
		modeCode = iota
		modeString
		modeLineComment
		modeBlockComment
	)

	mode := modeCode
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		switch mode {
		case modeString:
			out.WriteByte(ch)
			if escape {
				escape = false
			} else if ch == '\\' {
				escape = true
			} else if ch == '"' {
				mode = modeCode
			}
		case modeLineComment:
			if ch == '\n' || ch == '\r' {
				mode = modeCode
				out.WriteByte(ch)
			}
		case modeBlockComment:
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				mode = modeCode
				i++
			} else if ch == '\n' {
				out.WriteByte(ch)
			}
		default:
			if ch == '"' {
				mode = modeString
				out.WriteByte(ch)
				continue
			}
			if ch == '/' && i+1 < len(content) {
				switch content[i+1] {
				case '/':
					mode = modeLineComment
					i++
					continue
				case '*':
					mode = modeBlockComment
					i++
					continue
				}
			}
			out.WriteByte(ch)
		}
	}

	if mode == modeBlockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return stripTrailingCommas(out.String()), nil
}

func stripTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
			} else if ch == '\\' {
				escape = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && (content[j] == ' ' || content[j] == '\t' || content[j] == '\n' || content[j] == '\r') {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}
