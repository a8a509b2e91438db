package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/backend"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/capture"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/config"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/ipc"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/playback"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/recorder"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/session"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/timer"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/ui"
)

// newBackendClient builds the server client from config timing knobs.
func newBackendClient(cfg config.Config, logger *slog.Logger) *backend.Client {
	return backend.New(logger, backend.Options{
		BaseURL:           cfg.Server.URL,
		MaxRetries:        cfg.Fetch.MaxRetries,
		AttemptTimeout:    time.Duration(cfg.Fetch.AttemptTimeoutSeconds) * time.Second,
		RetryDelay:        time.Duration(cfg.Fetch.RetryDelayMS) * time.Millisecond,
		NotReadyDelay:     time.Duration(cfg.Fetch.NotReadyDelayMS) * time.Millisecond,
		ReadinessInterval: time.Duration(cfg.Readiness.PollIntervalMS) * time.Millisecond,
		HTTPClient:        &http.Client{},
	})
}

// commandPrepare requests a new session and stores its descriptor for start.
func (r Runner) commandPrepare(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	client := newBackendClient(cfg, logger)

	prepared, err := client.PrepareSession(ctx, backend.PrepareRequest{
		NumQuestions: cfg.Interview.NumQuestions,
		Level:        cfg.Interview.Level,
		Skills:       cfg.Interview.Skills,
		Company:      cfg.Interview.Company,
		Role:         cfg.Interview.Role,
		Topic:        cfg.Interview.Topic,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	desc := session.Descriptor{
		SessionID:      prepared.SessionID,
		TotalQuestions: prepared.NumQuestions.Int(),
	}
	if desc.TotalQuestions <= 0 {
		desc.TotalQuestions = cfg.Interview.NumQuestions
	}
	if err := session.SaveDescriptor(desc); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(r.Stdout, "session %s prepared with %d questions\n", desc.SessionID, desc.TotalQuestions)
	fmt.Fprintln(r.Stdout, "run 'intervuai start' when you are ready")
	return 0
}

// commandStart runs the prepared interview as the session owner process.
func (r Runner) commandStart(ctx context.Context, cfg config.Config, wantSessionID string, logger *slog.Logger) int {
	desc, err := session.LoadDescriptor(wantSessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionDataNotFound) {
			fmt.Fprintln(r.Stderr, "error: session data not found; run 'intervuai prepare' first")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: an interview session is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	client := newBackendClient(cfg, logger)
	manager := capture.NewManager(logger, cfg.Audio.Input, cfg.Audio.Fallback)
	rec := recorder.New(logger, manager, cfg.Answer.MinValidBytes, cfg.Debug.EnableAudioDump)
	gate := playback.NewGate(logger, manager, client)
	view := ui.NewTerminal(r.Stdout)

	controller := session.NewController(logger, session.Options{
		SessionID:            desc.SessionID,
		TotalQuestions:       desc.TotalQuestions,
		HasIntroductionPhase: cfg.Intro.Enable,
		AnswerWindowSeconds:  cfg.Answer.WindowSeconds,
		RedirectDelay:        time.Duration(cfg.Report.RedirectDelaySeconds) * time.Second,
	}, client, manager, rec, gate, timer.New(), view)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	result := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, result)

	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}

	_ = session.ClearDescriptor()
	fmt.Fprintf(r.Stdout, "your report is ready: %s\n", result.ReportURL)
	return 0
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"phase", string(result.Phase),
		"session_id", result.SessionID,
		"completed", result.Completed,
		"skipped", result.Skipped,
		"pending", result.Pending,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"report_url", result.ReportURL,
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}
