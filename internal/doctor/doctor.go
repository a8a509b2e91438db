// Package doctor runs readiness diagnostics for config, audio, server, and session state.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/capture"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/config"
	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/session"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime socket directory available", "XDG_RUNTIME_DIR is empty; session commands need it"))

	checks = append(checks, checkServerReady(cfg.Config))
	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkSessionDescriptor())

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkServerReady probes the interview server root.
func checkServerReady(cfg config.Config) Check {
	base := strings.TrimSpace(cfg.Server.URL)
	if base == "" {
		return Check{Name: "server.url", Pass: false, Message: "server.url is empty"}
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		return Check{Name: "server.url", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 256))

	if resp.StatusCode >= 500 {
		return Check{Name: "server.url", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base)}
	}
	return Check{Name: "server.url", Pass: true, Message: fmt.Sprintf("reachable at %s (HTTP %d)", base, resp.StatusCode)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := capture.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkSessionDescriptor reports whether a prepared session is waiting.
func checkSessionDescriptor() Check {
	desc, err := session.LoadDescriptor("")
	if err != nil {
		if errors.Is(err, session.ErrSessionDataNotFound) {
			return Check{Name: "session.data", Pass: false, Message: "no prepared session; run 'intervuai prepare' first"}
		}
		return Check{Name: "session.data", Pass: false, Message: err.Error()}
	}
	return Check{
		Name:    "session.data",
		Pass:    true,
		Message: fmt.Sprintf("session %s with %d questions", desc.SessionID, desc.TotalQuestions),
	}
}
