package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Timeline is an append-only mono PCM buffer. Its length is the cursor where
// the next material lands. A Timeline belongs to a single assembly and is not
// safe for concurrent use.
type Timeline struct {
	sampleRate int
	samples    []int
}

// NewTimeline returns an empty timeline at sampleRate.
func NewTimeline(sampleRate int) *Timeline {
	return &Timeline{sampleRate: sampleRate}
}

// SampleRate returns the timeline sample rate.
func (t *Timeline) SampleRate() int { return t.sampleRate }

// Len returns the number of samples written so far.
func (t *Timeline) Len() int { return len(t.samples) }

// DurationMS returns the current length rounded to milliseconds.
func (t *Timeline) DurationMS() int64 { return SamplesToMS(len(t.samples), t.sampleRate) }

// PadTo appends silence until the timeline holds n samples. It never shrinks.
func (t *Timeline) PadTo(n int) {
	if n <= len(t.samples) {
		return
	}
	t.samples = append(t.samples, make([]int, n-len(t.samples))...)
}

// Append writes samples at the cursor.
func (t *Timeline) Append(samples []int) {
	t.samples = append(t.samples, samples...)
}

// MixAt sums samples into the timeline starting at offset, saturating at the
// int16 range. Samples past the current end are appended. An offset beyond
// the end is gap-filled with silence first.
func (t *Timeline) MixAt(offset int, samples []int) {
	if offset < 0 {
		offset = 0
	}
	t.PadTo(offset)
	overlap := min(len(t.samples)-offset, len(samples))
	for i := range overlap {
		t.samples[offset+i] = clampSample(t.samples[offset+i] + samples[i])
	}
	t.samples = append(t.samples, samples[overlap:]...)
}

// Clip returns a copy of the timeline contents.
func (t *Timeline) Clip() Clip {
	return Clip{SampleRate: t.sampleRate, Samples: append([]int(nil), t.samples...)}
}

// Buffer exposes the timeline as a go-audio buffer for encoding.
func (t *Timeline) Buffer() *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Data:           t.samples,
		Format:         &goaudio.Format{SampleRate: t.sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
}

// WriteWAV encodes the timeline as 16-bit mono PCM WAV at path. The file is
// written beside path and renamed into place once complete.
func (t *Timeline) WriteWAV(path string) error {
	return writeWAV(path, t.Buffer())
}

// WriteWAV encodes clip as 16-bit mono PCM WAV at path.
func WriteWAV(path string, clip Clip) error {
	return writeWAV(path, &goaudio.IntBuffer{
		Data:           clip.Samples,
		Format:         &goaudio.Format{SampleRate: clip.SampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	})
}

func writeWAV(path string, buf *goaudio.IntBuffer) (err error) {
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return fmt.Errorf("write wav %s: invalid sample rate", path)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	enc := wav.NewEncoder(tmp, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)
	// Write emits the header even for an empty buffer.
	if err = enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err = enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename wav: %w", err)
	}
	return nil
}
