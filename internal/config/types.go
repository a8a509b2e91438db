// Package config resolves, parses, validates, and defaults intervuai configuration.
package config

// Config is the fully materialized runtime configuration used by intervuai.
type Config struct {
	Server    ServerConfig
	Audio     AudioConfig
	Answer    AnswerConfig
	Fetch     FetchConfig
	Readiness ReadinessConfig
	Intro     IntroConfig
	Report    ReportConfig
	Interview InterviewConfig
	Debug     DebugConfig
}

// ServerConfig locates the interview backend.
type ServerConfig struct {
	URL string
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// AnswerConfig bounds one recorded answer.
type AnswerConfig struct {
	WindowSeconds int
	MinValidBytes int
}

// FetchConfig shapes the question-fetch retry envelope.
type FetchConfig struct {
	MaxRetries            int
	AttemptTimeoutSeconds int
	RetryDelayMS          int
	NotReadyDelayMS       int
}

// ReadinessConfig shapes session-status polling.
type ReadinessConfig struct {
	PollIntervalMS int
}

// IntroConfig toggles the phased introduction exchange.
type IntroConfig struct {
	Enable bool
}

// ReportConfig controls the completion handoff.
type ReportConfig struct {
	RedirectDelaySeconds int
}

// InterviewConfig is the setup payload sent by the prepare command.
type InterviewConfig struct {
	NumQuestions int
	Level        string
	Topic        string
	Skills       []string
	Company      string
	Role         string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
