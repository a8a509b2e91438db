package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchQuestionSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_question/abc-123/2", r.URL.Path)
		_, _ = w.Write([]byte(`{"index":2,"text":"What is a goroutine?","audio_url":"/static/audio/q2.wav"}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 2)
	require.NoError(t, err)
	require.False(t, result.EndOfInterview)
	require.Equal(t, 2, result.Question.Index)
	require.Equal(t, "What is a goroutine?", result.Question.Text)
	require.Equal(t, "/static/audio/q2.wav", result.Question.AudioRef)
}

func TestFetchQuestionSucceedsOnFifthAttempt(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts <= 4 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"index":1,"text":"q","audio_url":""}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 1)
	require.NoError(t, err, "four failures leave one attempt in the budget")
	require.Equal(t, "q", result.Question.Text)
	require.Equal(t, 5, attempts)
}

func TestFetchQuestionExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 1)
	require.ErrorIs(t, err, ErrQuestionFetchExhausted)
	require.Equal(t, 5, attempts)
}

func TestFetchQuestionNotReadyDoesNotConsumeBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= 10 {
			w.WriteHeader(http.StatusAccepted)
			if calls%2 == 0 {
				_, _ = w.Write([]byte(`{"status":"not_ready"}`))
			} else {
				_, _ = w.Write([]byte(`{"status":"generating_questions"}`))
			}
			return
		}
		_, _ = w.Write([]byte(`{"index":0,"text":"q","audio_url":""}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 0)
	require.NoError(t, err, "generation waits never count against the transport budget")
	require.Equal(t, "q", result.Question.Text)
	require.Equal(t, 11, calls)
}

func TestFetchQuestionEndOfInterview(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"end_of_interview":true}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 6)
	require.NoError(t, err)
	require.True(t, result.EndOfInterview)
}

func TestFetchQuestionServerErrorMarkerFailsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Invalid question index"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).FetchQuestion(context.Background(), "abc-123", 99)
	require.ErrorIs(t, err, ErrQuestionUnavailable)
	require.Contains(t, err.Error(), "Invalid question index")
	require.Equal(t, 1, calls)
}

func TestFetchQuestionCancelDuringNotReady(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"not_ready"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server.URL).FetchQuestion(ctx, "abc-123", 0)
	require.ErrorIs(t, err, context.Canceled)
}
