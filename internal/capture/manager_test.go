package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(slog.New(slog.NewJSONHandler(io.Discard, nil)), "default", "")
	m.selectDev = func(context.Context, string, string) (Selection, error) {
		return Selection{Device: Device{ID: "test-source", Description: "Test Source", Available: true}}, nil
	}
	m.startStream = func(_ context.Context, device Device) (*Stream, error) {
		s := &Stream{device: device, stopCh: make(chan struct{})}
		s.micEnabled.Store(true)
		return s, nil
	}
	return m
}

func TestManagerAcquireOnce(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.False(t, m.Live())

	require.NoError(t, m.Acquire(context.Background()))
	require.True(t, m.Live())

	err := m.Acquire(context.Background())
	require.ErrorIs(t, err, ErrAlreadyAcquired)

	device, ok := m.Device()
	require.True(t, ok)
	require.Equal(t, "test-source", device.ID)
}

func TestManagerAcquirePermissionDenied(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	m.selectDev = func(context.Context, string, string) (Selection, error) {
		return Selection{}, errors.New("connect pulse server: access denied")
	}

	err := m.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.False(t, m.Live())
}

func TestManagerAcquireDeviceUnavailable(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	m.startStream = func(context.Context, Device) (*Stream, error) {
		return nil, errors.New("create pulse record stream: no such entity")
	}

	err := m.Acquire(context.Background())
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.False(t, m.Live())
}

func TestManagerMuteGate(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.False(t, m.MicrophoneEnabled(), "no stream means no live microphone")

	require.NoError(t, m.Acquire(context.Background()))
	require.True(t, m.MicrophoneEnabled())

	m.SetMicrophoneEnabled(false)
	require.False(t, m.MicrophoneEnabled())

	m.SetMicrophoneEnabled(true)
	require.True(t, m.MicrophoneEnabled())
}

func TestManagerSinkRequiresAcquire(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	err := m.AttachSink(&bufferSink{})
	require.ErrorIs(t, err, ErrNotAcquired)
	m.DetachSink()
}

func TestManagerReleaseIdempotent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.Acquire(context.Background()))

	m.Release()
	require.False(t, m.Live())
	m.Release()

	_, ok := m.Device()
	require.False(t, ok)

	require.NoError(t, m.Acquire(context.Background()), "manager is reusable after release")
	require.True(t, m.Live())
}
