// Package audio holds the mono 16-bit PCM primitives used to assemble a dub
// track: clips, playback-rate adjustment, exact-length fitting, and the
// append-only timeline that is written out as WAV.
package audio

import (
	"math"
)

const (
	maxSample = math.MaxInt16
	minSample = math.MinInt16
)

// Clip is a mono 16-bit PCM buffer. Samples hold values in the int16 range.
type Clip struct {
	Samples    []int
	SampleRate int
}

// Len returns the number of samples.
func (c Clip) Len() int {
	return len(c.Samples)
}

// DurationMS returns the clip length rounded to whole milliseconds.
func (c Clip) DurationMS() int64 {
	return SamplesToMS(len(c.Samples), c.SampleRate)
}

// Empty reports whether the clip carries no audio.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0
}

// SamplesForMS converts a millisecond offset to a sample index, rounding to
// the nearest sample.
func SamplesForMS(ms int64, sampleRate int) int {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return int((ms*int64(sampleRate) + 500) / 1000)
}

// SamplesToMS converts a sample count to milliseconds, rounding to the
// nearest millisecond.
func SamplesToMS(samples, sampleRate int) int64 {
	if samples <= 0 || sampleRate <= 0 {
		return 0
	}
	return (int64(samples)*1000 + int64(sampleRate)/2) / int64(sampleRate)
}

// Silence returns a clip of n zero samples.
func Silence(n, sampleRate int) Clip {
	if n < 0 {
		n = 0
	}
	return Clip{Samples: make([]int, n), SampleRate: sampleRate}
}

// AdjustPlaybackRate changes the playback speed of clip by ratio using linear
// interpolation. A ratio above 1 speeds playback up and shortens the clip; a
// ratio below 1 slows it down. The result has round(len/ratio) samples.
//
// This is a plain rate change: pitch moves with speed. It is not a
// pitch-preserving time stretch.
func AdjustPlaybackRate(clip Clip, ratio float64) Clip {
	out := Clip{SampleRate: clip.SampleRate}
	n := len(clip.Samples)
	if n == 0 {
		return out
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio == 1 {
		out.Samples = append([]int(nil), clip.Samples...)
		return out
	}
	newLen := int(math.Round(float64(n) / ratio))
	if newLen <= 0 {
		return out
	}
	out.Samples = make([]int, newLen)
	last := n - 1
	for i := range out.Samples {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			out.Samples[i] = clip.Samples[last]
			continue
		}
		frac := pos - float64(idx)
		a := float64(clip.Samples[idx])
		b := float64(clip.Samples[idx+1])
		out.Samples[i] = clampSample(int(math.Round(a + (b-a)*frac)))
	}
	return out
}

// Resample converts clip to sampleRate without changing its duration.
func Resample(clip Clip, sampleRate int) Clip {
	if sampleRate <= 0 || clip.SampleRate == sampleRate || clip.SampleRate <= 0 {
		if sampleRate > 0 && clip.SampleRate <= 0 {
			clip.SampleRate = sampleRate
		}
		return clip
	}
	out := AdjustPlaybackRate(clip, float64(clip.SampleRate)/float64(sampleRate))
	out.SampleRate = sampleRate
	return out
}

// Fit truncates clip or pads it with trailing silence so it holds exactly n
// samples.
func Fit(clip Clip, n int) Clip {
	if n <= 0 {
		return Clip{SampleRate: clip.SampleRate}
	}
	out := Clip{SampleRate: clip.SampleRate, Samples: make([]int, n)}
	copy(out.Samples, clip.Samples)
	return out
}

func clampSample(v int) int {
	switch {
	case v > maxSample:
		return maxSample
	case v < minSample:
		return minSample
	default:
		return v
	}
}
