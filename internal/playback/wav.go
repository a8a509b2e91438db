package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Clip is decoded prompt audio ready for the output stream.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration in samples per channel; zero channels never escapes ParseWAV.
func (c Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// ParseWAV decodes a 16-bit PCM WAV payload by walking its chunks.
func ParseWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, errNotWAV
	}

	var (
		clip     Clip
		haveFmt  bool
		haveData bool
		pcm      []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			return Clip{}, fmt.Errorf("truncated %q chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return Clip{}, errors.New("fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Clip{}, fmt.Errorf("unsupported audio format %d, want PCM", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return Clip{}, fmt.Errorf("unsupported bit depth %d, want 16", bits)
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkLen]
			haveData = true
		}

		// Chunks are word-aligned.
		offset = body + chunkLen + chunkLen%2
	}

	if !haveFmt || !haveData {
		return Clip{}, errors.New("missing fmt or data chunk")
	}
	if clip.Channels <= 0 || clip.SampleRate <= 0 {
		return Clip{}, fmt.Errorf("invalid wav format: channels=%d rate=%d", clip.Channels, clip.SampleRate)
	}

	clip.Samples = make([]int16, len(pcm)/2)
	for i := range clip.Samples {
		clip.Samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return clip, nil
}
