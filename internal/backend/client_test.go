package backend

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), Options{
		BaseURL:           serverURL,
		MaxRetries:        5,
		AttemptTimeout:    time.Second,
		RetryDelay:        5 * time.Millisecond,
		NotReadyDelay:     5 * time.Millisecond,
		ReadinessInterval: 5 * time.Millisecond,
	})
}

func TestPrepareSession(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/prepare_session", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"num_questions":5`)
		require.Contains(t, string(body), `"skills":["go","sql"]`)

		w.Header().Set("Content-Type", "application/json")
		// The server echoes num_questions back as a string.
		_, _ = w.Write([]byte(`{"session_id":"abc-123","num_questions":"5","status":"preparing"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	prepared, err := client.PrepareSession(context.Background(), PrepareRequest{
		NumQuestions: 5,
		Level:        "intermediate",
		Skills:       []string{"go", "sql"},
	})
	require.NoError(t, err)
	require.Equal(t, "abc-123", prepared.SessionID)
	require.Equal(t, 5, prepared.NumQuestions.Int())
}

func TestPrepareSessionMissingSessionID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"preparing"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).PrepareSession(context.Background(), PrepareRequest{NumQuestions: 3})
	require.ErrorIs(t, err, ErrSessionPreparationFailed)
}

func TestWaitUntilReadyPollsThroughPending(t *testing.T) {
	t.Parallel()

	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/session_status/abc-123", r.URL.Path)
		polls++
		if polls < 4 {
			_, _ = w.Write([]byte(`{"status":"preparing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}))
	defer server.Close()

	readiness, err := newTestClient(t, server.URL).WaitUntilReady(context.Background(), "abc-123")
	require.NoError(t, err)
	require.Equal(t, "ready", readiness.Status)
	require.False(t, readiness.Phased())
	require.Equal(t, 4, polls)
}

func TestWaitUntilReadyPhased(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "intro_ready",
			"recon_intro_audio": "/static/audio/intro.wav",
			"intro_question": {"index": 0, "text": "Tell me about yourself.", "audio_url": "/static/audio/q0.wav"}
		}`))
	}))
	defer server.Close()

	readiness, err := newTestClient(t, server.URL).WaitUntilReady(context.Background(), "abc-123")
	require.NoError(t, err)
	require.True(t, readiness.Phased())
	require.Equal(t, "/static/audio/intro.wav", readiness.IntroAudioRef)
	require.Equal(t, "Tell me about yourself.", readiness.IntroQuestion.Text)
}

func TestWaitUntilReadyIntroReadyWithoutAssetsIsFlat(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"intro_ready"}`))
	}))
	defer server.Close()

	readiness, err := newTestClient(t, server.URL).WaitUntilReady(context.Background(), "abc-123")
	require.NoError(t, err)
	require.False(t, readiness.Phased())
}

func TestWaitUntilReadyPreparationError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":"generation quota exceeded"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).WaitUntilReady(context.Background(), "abc-123")
	require.ErrorIs(t, err, ErrSessionPreparationFailed)
	require.Contains(t, err.Error(), "generation quota exceeded")
}

func TestWaitUntilReadySurvivesTransportBlips(t *testing.T) {
	t.Parallel()

	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		polls++
		if polls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}))
	defer server.Close()

	readiness, err := newTestClient(t, server.URL).WaitUntilReady(context.Background(), "abc-123")
	require.NoError(t, err)
	require.Equal(t, "ready", readiness.Status)
}

func TestWaitUntilReadyCancel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"preparing"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL).WaitUntilReady(ctx, "abc-123")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReportURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:5000")
	require.Equal(t, "http://127.0.0.1:5000/report/abc-123", client.ReportURL("abc-123"))
}
