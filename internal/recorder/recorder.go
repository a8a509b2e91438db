// Package recorder collects answer PCM between Begin and End and packages
// it as a WAV payload classified as substantive or skip-worthy.
package recorder

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/DrDarkShadow/IntervuAI-Interview-Preparetion-Partner/internal/capture"
)

var (
	// ErrAlreadyRecording is returned when Begin overlaps an open recording.
	ErrAlreadyRecording = errors.New("answer recording already in progress")
	// ErrNotRecording is returned when End has no open recording to close.
	ErrNotRecording = errors.New("no answer recording in progress")
)

// Source is the slice of the capture manager the recorder depends on.
type Source interface {
	AttachSink(capture.Sink) error
	DetachSink()
}

// Recording is one finished answer take.
type Recording struct {
	QuestionIndex int
	WAV           []byte
	SizeBytes     int
	// Substantive is false for takes too small to be a real answer;
	// those are skipped instead of submitted.
	Substantive bool
}

// Recorder buffers PCM for exactly one take at a time.
type Recorder struct {
	logger *slog.Logger
	source Source

	minValidBytes   int
	enableAudioDump bool

	mu            sync.Mutex
	recording     bool
	questionIndex int
	pcm           []byte
}

// New builds a recorder over the session capture source. Takes whose WAV
// payload is at or below minValidBytes are classified as not substantive.
func New(logger *slog.Logger, source Source, minValidBytes int, enableAudioDump bool) *Recorder {
	return &Recorder{
		logger:          logger,
		source:          source,
		minValidBytes:   minValidBytes,
		enableAudioDump: enableAudioDump,
	}
}

// WritePCM implements capture.Sink.
func (r *Recorder) WritePCM(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.pcm = append(r.pcm, chunk...)
}

// Begin opens a take for one question and starts accepting PCM.
func (r *Recorder) Begin(questionIndex int) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.recording = true
	r.questionIndex = questionIndex
	r.pcm = r.pcm[:0]
	r.mu.Unlock()

	if err := r.source.AttachSink(r); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}

	r.logger.Info("answer recording started", "question_index", questionIndex)
	return nil
}

// End closes the open take exactly once and returns the packaged answer.
func (r *Recorder) End() (Recording, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Recording{}, ErrNotRecording
	}
	r.mu.Unlock()

	// Detach first so the trailing partial chunk flushes through WritePCM.
	r.source.DetachSink()

	r.mu.Lock()
	r.recording = false
	questionIndex := r.questionIndex
	pcm := make([]byte, len(r.pcm))
	copy(pcm, r.pcm)
	r.pcm = r.pcm[:0]
	r.mu.Unlock()

	wav := EncodePCM16WAV(pcm, capture.SampleRate, 1)
	recording := Recording{
		QuestionIndex: questionIndex,
		WAV:           wav,
		SizeBytes:     len(wav),
		Substantive:   len(wav) > r.minValidBytes,
	}

	r.logger.Info("answer recording finished",
		"question_index", questionIndex,
		"size_bytes", recording.SizeBytes,
		"substantive", recording.Substantive,
	)

	if r.enableAudioDump {
		if path, err := dumpDebugWAV(wav, questionIndex); err != nil {
			r.logger.Warn("unable to write debug audio dump", "error", err)
		} else {
			r.logger.Info("debug audio dump written", "path", path)
		}
	}

	return recording, nil
}

// Recording reports whether a take is currently open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Abort discards the open take without packaging it.
func (r *Recorder) Abort() {
	r.mu.Lock()
	open := r.recording
	r.recording = false
	r.pcm = r.pcm[:0]
	r.mu.Unlock()

	if open {
		r.source.DetachSink()
		r.logger.Info("answer recording aborted")
	}
}
