// Package playback plays AI prompt audio while holding the microphone
// muted, so the capture stream never hears the speakers.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Microphone is the mute gate slice of the capture manager.
type Microphone interface {
	SetMicrophoneEnabled(enabled bool)
}

// AssetFetcher downloads prompt audio by server reference.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, ref string) ([]byte, error)
}

// Sink renders one decoded clip to completion.
type Sink interface {
	Play(ctx context.Context, clip Clip) error
}

// Gate serializes prompt playback against answer capture. The microphone
// is muted for the whole call and unmuted on every exit path.
type Gate struct {
	logger *slog.Logger
	mic    Microphone
	assets AssetFetcher
	sink   Sink

	// grace is the pause substituted for prompts with no audio asset.
	grace time.Duration
}

// NewGate wires the gate over live capture and Pulse output.
func NewGate(logger *slog.Logger, mic Microphone, assets AssetFetcher) *Gate {
	return &Gate{
		logger: logger,
		mic:    mic,
		assets: assets,
		sink:   PulseSink{},
		grace:  time.Second,
	}
}

// PlayPrompt fetches, decodes, and plays one prompt reference. An empty
// ref degrades to a short grace pause so the candidate can read the
// on-screen text. Errors are reported but leave the session playable;
// the caller decides whether to continue.
func (g *Gate) PlayPrompt(ctx context.Context, ref string) error {
	g.mic.SetMicrophoneEnabled(false)
	defer g.mic.SetMicrophoneEnabled(true)

	if ref == "" {
		g.logger.Warn("prompt has no audio asset, pausing instead")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.grace):
		}
		return nil
	}

	data, err := g.assets.FetchAsset(ctx, ref)
	if err != nil {
		return fmt.Errorf("fetch prompt audio: %w", err)
	}

	clip, err := ParseWAV(data)
	if err != nil {
		return fmt.Errorf("decode prompt audio %q: %w", ref, err)
	}

	g.logger.Info("playing prompt",
		"ref", ref,
		"frames", clip.Frames(),
		"sample_rate", clip.SampleRate,
	)

	if err := g.sink.Play(ctx, clip); err != nil {
		return fmt.Errorf("play prompt audio: %w", err)
	}
	return nil
}
