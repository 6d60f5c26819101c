package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"dubby/internal/deps"
)

// ErrUnsupportedWAV reports audio that is not 16-bit integer PCM WAV.
var ErrUnsupportedWAV = errors.New("unsupported wav encoding")

const pcmFormat = 1

// DecodeWAV parses 16-bit PCM WAV bytes into a mono clip. Multichannel audio
// is downmixed by averaging.
func DecodeWAV(data []byte) (Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("%w: not a wav file", ErrUnsupportedWAV)
	}
	if dec.WavAudioFormat != pcmFormat || dec.BitDepth != 16 {
		return Clip{}, fmt.Errorf("%w: format %d, %d-bit", ErrUnsupportedWAV, dec.WavAudioFormat, dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode wav: %w", err)
	}
	channels := 1
	rate := int(dec.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	if rate <= 0 {
		return Clip{}, fmt.Errorf("%w: missing sample rate", ErrUnsupportedWAV)
	}
	return Clip{Samples: downmix(buf.Data, channels), SampleRate: rate}, nil
}

func downmix(data []int, channels int) []int {
	if channels <= 1 {
		return append([]int(nil), data...)
	}
	frames := len(data) / channels
	out := make([]int, frames)
	for f := range frames {
		sum := 0
		for ch := range channels {
			sum += data[f*channels+ch]
		}
		out[f] = clampSample(sum / channels)
	}
	return out
}

// Decoder turns synthesized audio payloads into clips at a fixed sample rate.
// WAV is parsed directly; anything else is transcoded with ffmpeg first.
type Decoder struct {
	ffmpeg     string
	workDir    string
	sampleRate int
	run        deps.CommandRunner
}

// DecoderOption customizes a Decoder.
type DecoderOption func(*Decoder)

// WithDecoderRunner overrides the command runner used for transcoding.
func WithDecoderRunner(run deps.CommandRunner) DecoderOption {
	return func(d *Decoder) {
		if run != nil {
			d.run = run
		}
	}
}

// NewDecoder returns a decoder producing clips at sampleRate. Temporary
// transcode files live under workDir.
func NewDecoder(ffmpegBinary, workDir string, sampleRate int, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		ffmpeg:     deps.ResolveFFmpegPath(ffmpegBinary),
		workDir:    workDir,
		sampleRate: sampleRate,
		run:        deps.Run,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleRate returns the rate every decoded clip is converted to.
func (d *Decoder) SampleRate() int { return d.sampleRate }

// Decode converts data into a mono clip at the decoder sample rate.
func (d *Decoder) Decode(ctx context.Context, data []byte) (Clip, error) {
	if len(data) == 0 {
		return Clip{SampleRate: d.sampleRate}, nil
	}
	clip, err := DecodeWAV(data)
	if err != nil {
		clip, err = d.transcode(ctx, data)
		if err != nil {
			return Clip{}, err
		}
	}
	return Resample(clip, d.sampleRate), nil
}

func (d *Decoder) transcode(ctx context.Context, data []byte) (Clip, error) {
	dir, err := os.MkdirTemp(d.workDir, "decode-")
	if err != nil {
		return Clip{}, fmt.Errorf("create decode dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.bin")
	output := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return Clip{}, fmt.Errorf("write synthesized audio: %w", err)
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vn", "-ac", "1", "-ar", fmt.Sprint(d.sampleRate),
		"-c:a", "pcm_s16le",
		output,
	}
	if _, err := d.run(ctx, d.ffmpeg, args...); err != nil {
		return Clip{}, fmt.Errorf("transcode synthesized audio: %w", err)
	}
	wavData, err := os.ReadFile(output)
	if err != nil {
		return Clip{}, fmt.Errorf("read transcoded audio: %w", err)
	}
	return DecodeWAV(wavData)
}
