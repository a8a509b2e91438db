package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrAlreadyAcquired is returned when Acquire is called on a live manager.
	ErrAlreadyAcquired = errors.New("capture device already acquired")
	// ErrPermissionDenied is returned when the audio server refuses access.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrDeviceUnavailable is returned when no usable input source exists.
	ErrDeviceUnavailable = errors.New("microphone unavailable")
	// ErrNotAcquired is returned for operations that need a live stream.
	ErrNotAcquired = errors.New("capture device not acquired")
)

// Manager acquires the microphone once per session and owns the stream
// for the session lifetime. Mute state is managed here so prompt playback
// and answer recording never overlap on the same device.
type Manager struct {
	logger *slog.Logger

	input    string
	fallback string

	startStream func(context.Context, Device) (*Stream, error)
	selectDev   func(context.Context, string, string) (Selection, error)

	mu     sync.Mutex
	stream *Stream
}

// NewManager builds a manager bound to configured device preferences.
func NewManager(logger *slog.Logger, input, fallback string) *Manager {
	return &Manager{
		logger:      logger,
		input:       input,
		fallback:    fallback,
		startStream: StartStream,
		selectDev:   SelectDevice,
	}
}

// Acquire selects a device and opens the record stream. The stream stays
// open until Release; a second Acquire on a live manager fails.
func (m *Manager) Acquire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return ErrAlreadyAcquired
	}

	selection, err := m.selectDev(ctx, m.input, m.fallback)
	if err != nil {
		return fmt.Errorf("%w: %v", classifyAcquireError(err), err)
	}
	if selection.Warning != "" {
		m.logger.Warn("capture device fallback", "warning", selection.Warning)
	}

	stream, err := m.startStream(ctx, selection.Device)
	if err != nil {
		return fmt.Errorf("%w: %v", classifyAcquireError(err), err)
	}

	m.stream = stream
	m.logger.Info("capture device acquired",
		"device", DescribeDevice(selection.Device),
		"fallback", selection.Fallback,
	)
	return nil
}

// Live reports whether the manager currently owns a stream.
func (m *Manager) Live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

// Device returns the acquired device, or false when not acquired.
func (m *Manager) Device() (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return Device{}, false
	}
	return m.stream.Device(), true
}

// SetMicrophoneEnabled mutes or unmutes chunk delivery on the live stream.
func (m *Manager) SetMicrophoneEnabled(enabled bool) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream == nil {
		return
	}
	stream.SetMicrophoneEnabled(enabled)
}

// MicrophoneEnabled reports the current mute gate state.
func (m *Manager) MicrophoneEnabled() bool {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream == nil {
		return false
	}
	return stream.MicrophoneEnabled()
}

// AttachSink routes PCM to sink until DetachSink or Release.
func (m *Manager) AttachSink(sink Sink) error {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream == nil {
		return ErrNotAcquired
	}
	stream.AttachSink(sink)
	return nil
}

// DetachSink stops PCM delivery and flushes the trailing partial chunk.
func (m *Manager) DetachSink() {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream == nil {
		return
	}
	stream.DetachSink()
}

// Release closes the stream. Safe to call repeatedly.
func (m *Manager) Release() {
	m.mu.Lock()
	stream := m.stream
	m.stream = nil
	m.mu.Unlock()

	if stream == nil {
		return
	}
	if err := stream.Stop(); err != nil {
		m.logger.Warn("capture stream stop failed", "error", err)
		return
	}
	m.logger.Info("capture device released", "bytes_captured", stream.BytesCaptured())
}

// classifyAcquireError folds raw Pulse/selection failures into the two
// acquisition sentinels callers branch on.
func classifyAcquireError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "access denied") || strings.Contains(msg, "permission") || strings.Contains(msg, "not authorized") {
		return ErrPermissionDenied
	}
	return ErrDeviceUnavailable
}
