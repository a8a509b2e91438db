package playback

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
)

// PulseSink plays decoded clips through a PulseAudio output stream.
type PulseSink struct{}

// Play blocks until the clip has drained through the output stream.
func (PulseSink) Play(ctx context.Context, clip Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("intervuai"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	samples := clip.Samples
	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, pulse.EndOfData
		}
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(clip.SampleRate),
		pulse.PlaybackMediaName("intervuai prompt"),
	}
	if clip.Channels == 2 {
		opts = append(opts, pulse.PlaybackStereo)
	} else {
		opts = append(opts, pulse.PlaybackMono)
	}

	stream, err := client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play prompt stream: %w", err)
	}
	return nil
}
