package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL: "http://127.0.0.1:5000",
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Answer: AnswerConfig{
			WindowSeconds: 120,
			MinValidBytes: 1000,
		},
		Fetch: FetchConfig{
			MaxRetries:            5,
			AttemptTimeoutSeconds: 30,
			RetryDelayMS:          2000,
			NotReadyDelayMS:       1500,
		},
		Readiness: ReadinessConfig{
			PollIntervalMS: 2000,
		},
		Intro: IntroConfig{Enable: true},
		Report: ReportConfig{
			RedirectDelaySeconds: 3,
		},
		Interview: InterviewConfig{
			NumQuestions: 5,
			Level:        "intermediate",
		},
		Debug: DebugConfig{},
	}
}
