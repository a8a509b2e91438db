package recorder

import (
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/capture"
)

type fakeSource struct {
	sink     capture.Sink
	attached int
	detached int
	tail     []byte
}

func (f *fakeSource) AttachSink(sink capture.Sink) error {
	f.sink = sink
	f.attached++
	return nil
}

func (f *fakeSource) DetachSink() {
	if f.sink != nil && len(f.tail) > 0 {
		f.sink.WritePCM(f.tail)
		f.tail = nil
	}
	f.sink = nil
	f.detached++
}

func newTestRecorder(t *testing.T, source Source, minValidBytes int) *Recorder {
	t.Helper()
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), source, minValidBytes, false)
}

func TestRecorderBeginEndSubstantive(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	rec := newTestRecorder(t, source, 1000)

	require.NoError(t, rec.Begin(3))
	require.True(t, rec.Recording())

	source.sink.WritePCM(make([]byte, 2048))

	recording, err := rec.End()
	require.NoError(t, err)
	require.False(t, rec.Recording())
	require.Equal(t, 3, recording.QuestionIndex)
	require.Equal(t, 2048+44, recording.SizeBytes)
	require.True(t, recording.Substantive)
	require.Equal(t, 1, source.attached)
	require.Equal(t, 1, source.detached)
}

func TestRecorderShortTakeNotSubstantive(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	rec := newTestRecorder(t, source, 1000)

	require.NoError(t, rec.Begin(1))
	source.sink.WritePCM(make([]byte, 200))

	recording, err := rec.End()
	require.NoError(t, err)
	require.Equal(t, 244, recording.SizeBytes)
	require.False(t, recording.Substantive, "tiny takes are skipped, not submitted")
}

func TestRecorderEndFlushesDetachTail(t *testing.T) {
	t.Parallel()

	source := &fakeSource{tail: make([]byte, 512)}
	rec := newTestRecorder(t, source, 100)

	require.NoError(t, rec.Begin(0))
	source.sink.WritePCM(make([]byte, 1024))

	recording, err := rec.End()
	require.NoError(t, err)
	require.Equal(t, 1024+512+44, recording.SizeBytes)
}

func TestRecorderBeginTwiceFails(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	rec := newTestRecorder(t, source, 1000)

	require.NoError(t, rec.Begin(0))
	require.ErrorIs(t, rec.Begin(1), ErrAlreadyRecording)

	_, err := rec.End()
	require.NoError(t, err)
}

func TestRecorderEndWithoutBeginFails(t *testing.T) {
	t.Parallel()

	rec := newTestRecorder(t, &fakeSource{}, 1000)
	_, err := rec.End()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestRecorderIgnoresPCMOutsideTake(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	rec := newTestRecorder(t, source, 0)

	rec.WritePCM(make([]byte, 999))

	require.NoError(t, rec.Begin(2))
	recording, err := rec.End()
	require.NoError(t, err)
	require.Equal(t, 44, recording.SizeBytes, "pre-take audio never leaks into the answer")
}

func TestRecorderAbortDiscardsTake(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	rec := newTestRecorder(t, source, 1000)

	require.NoError(t, rec.Begin(4))
	source.sink.WritePCM(make([]byte, 4096))
	rec.Abort()

	require.False(t, rec.Recording())
	require.Equal(t, 1, source.detached)

	_, err := rec.End()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestEncodePCM16WAVHeader(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 3200)
	wav := EncodePCM16WAV(pcm, capture.SampleRate, 1)

	require.Len(t, wav, 44+len(pcm))
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	require.Equal(t, uint32(capture.SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
}
