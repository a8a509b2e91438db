package capture

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// SampleRate is the fixed capture rate for answer audio.
	SampleRate = 16000
	// chunkSizeBytes is 100ms of 16kHz mono s16 PCM.
	chunkSizeBytes = SampleRate * 2 / 10
)

// Sink receives PCM chunks from an open stream while attached.
type Sink interface {
	WritePCM(chunk []byte)
}

// Stream owns one live Pulse record stream for the whole interview.
// Chunks flow to the attached sink only while the microphone is enabled;
// with no sink attached, or while muted, PCM is discarded at arrival.
type Stream struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	stopCh chan struct{}

	micEnabled atomic.Bool

	mu      sync.Mutex
	sink    Sink
	pending []byte
	stopped bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// StartStream creates and starts a 16kHz mono s16 record stream.
func StartStream(ctx context.Context, selected Device) (*Stream, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("intervuai"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	stream := &Stream{
		device: selected,
		client: client,
		stopCh: make(chan struct{}),
	}
	stream.micEnabled.Store(true)

	writer := pulse.NewWriter(writerFunc(stream.onPCM), pulseproto.FormatInt16LE)
	record, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(chunkSizeBytes),
		pulse.RecordMediaName("intervuai answer"),
	)
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	stream.stream = record
	record.Start()

	go func() {
		<-ctx.Done()
		_ = stream.Stop()
	}()

	return stream, nil
}

// Device returns capture metadata for logging and diagnostics.
func (s *Stream) Device() Device {
	return s.device
}

// SetMicrophoneEnabled gates chunk delivery without tearing down the stream.
func (s *Stream) SetMicrophoneEnabled(enabled bool) {
	s.micEnabled.Store(enabled)
}

// MicrophoneEnabled reports whether chunks currently reach the sink.
func (s *Stream) MicrophoneEnabled() bool {
	return s.micEnabled.Load()
}

// AttachSink routes subsequent PCM chunks to sink. Any partially
// accumulated chunk from before the attach is discarded so a new
// recording never starts with stale audio.
func (s *Stream) AttachSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.sink = sink
}

// DetachSink stops chunk delivery and flushes the residual partial
// chunk to the departing sink so short trailing audio is not lost.
func (s *Stream) DetachSink() {
	s.mu.Lock()
	sink := s.sink
	pending := s.pending
	s.sink = nil
	s.pending = nil
	s.mu.Unlock()

	if sink != nil && len(pending) > 0 {
		chunk := make([]byte, len(pending))
		copy(chunk, pending)
		sink.WritePCM(chunk)
	}
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *Stream) BytesCaptured() int64 {
	return s.bytes.Load()
}

// Stop halts the stream exactly once and releases the Pulse client.
func (s *Stream) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.sink = nil
	s.pending = nil
	close(s.stopCh)
	s.mu.Unlock()

	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.inflight.Wait()
	return nil
}

// Close is a convenience alias for Stop.
func (s *Stream) Close() {
	_ = s.Stop()
}

// onPCM receives raw Pulse frames and emits chunkSizeBytes slices to the sink.
func (s *Stream) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-s.stopCh:
		return 0, io.EOF
	default:
	}

	s.bytes.Add(int64(len(buffer)))

	if !s.micEnabled.Load() {
		return len(buffer), nil
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	sink := s.sink
	if sink == nil {
		s.mu.Unlock()
		return len(buffer), nil
	}
	// Guard Add under the same mutex as s.stopped to avoid Add/Wait races.
	s.inflight.Add(1)

	s.pending = append(s.pending, buffer...)
	chunks := make([][]byte, 0, len(s.pending)/chunkSizeBytes)
	for len(s.pending) >= chunkSizeBytes {
		chunk := make([]byte, chunkSizeBytes)
		copy(chunk, s.pending[:chunkSizeBytes])
		s.pending = s.pending[chunkSizeBytes:]
		chunks = append(chunks, chunk)
	}
	s.mu.Unlock()
	defer s.inflight.Done()

	for _, chunk := range chunks {
		select {
		case <-s.stopCh:
			return 0, io.EOF
		default:
		}
		sink.WritePCM(chunk)
	}

	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
