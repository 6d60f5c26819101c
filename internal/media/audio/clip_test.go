package audio

import (
	"testing"
)

func tone(ms int64, rate int) Clip {
	n := SamplesForMS(ms, rate)
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i % 200) * 100
	}
	return Clip{Samples: samples, SampleRate: rate}
}

func TestSampleConversions(t *testing.T) {
	if got := SamplesForMS(1500, 24000); got != 36000 {
		t.Fatalf("SamplesForMS = %d, want 36000", got)
	}
	if got := SamplesForMS(1, 44100); got != 44 {
		t.Fatalf("SamplesForMS(1ms@44.1k) = %d, want 44", got)
	}
	if got := SamplesToMS(36000, 24000); got != 1500 {
		t.Fatalf("SamplesToMS = %d, want 1500", got)
	}
	if got := SamplesForMS(-5, 24000); got != 0 {
		t.Fatalf("negative offset should clamp to 0, got %d", got)
	}
}

func TestAdjustPlaybackRateLength(t *testing.T) {
	clip := tone(3000, 24000)
	tests := []struct {
		name  string
		ratio float64
		want  int
	}{
		{"speed up", 2, 36000},
		{"slow down", 0.5, 144000},
		{"identity", 1, 72000},
		{"invalid ratio", 0, 72000},
		{"odd ratio", 1.5, 48000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustPlaybackRate(clip, tt.ratio)
			if got.Len() != tt.want {
				t.Fatalf("len = %d, want %d", got.Len(), tt.want)
			}
			if got.SampleRate != clip.SampleRate {
				t.Fatalf("sample rate changed to %d", got.SampleRate)
			}
		})
	}
}

func TestAdjustPlaybackRateInterpolates(t *testing.T) {
	clip := Clip{Samples: []int{0, 100, 200, 300}, SampleRate: 8000}
	got := AdjustPlaybackRate(clip, 0.5)
	want := []int{0, 50, 100, 150, 200, 250, 300, 300}
	if len(got.Samples) != len(want) {
		t.Fatalf("len = %d, want %d", len(got.Samples), len(want))
	}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d (%v)", i, got.Samples[i], want[i], got.Samples)
		}
	}
}

func TestAdjustPlaybackRateDoesNotAliasInput(t *testing.T) {
	clip := Clip{Samples: []int{1, 2, 3}, SampleRate: 8000}
	got := AdjustPlaybackRate(clip, 1)
	got.Samples[0] = 99
	if clip.Samples[0] != 1 {
		t.Fatal("identity adjustment aliased the input buffer")
	}
}

func TestFitLongClipIntoShortSlot(t *testing.T) {
	const rate = 24000
	clip := tone(3000, rate)
	slot := SamplesForMS(1500, rate)

	ratio := float64(clip.DurationMS()) / 1500
	fitted := Fit(AdjustPlaybackRate(clip, ratio), slot)
	if fitted.Len() != slot {
		t.Fatalf("fitted len = %d, want %d", fitted.Len(), slot)
	}
	if fitted.DurationMS() != 1500 {
		t.Fatalf("fitted duration = %dms, want 1500ms", fitted.DurationMS())
	}
}

func TestFitPadsAndTruncates(t *testing.T) {
	clip := Clip{Samples: []int{5, 6, 7}, SampleRate: 8000}
	padded := Fit(clip, 5)
	if len(padded.Samples) != 5 || padded.Samples[2] != 7 || padded.Samples[4] != 0 {
		t.Fatalf("unexpected padded clip %v", padded.Samples)
	}
	truncated := Fit(clip, 2)
	if len(truncated.Samples) != 2 || truncated.Samples[1] != 6 {
		t.Fatalf("unexpected truncated clip %v", truncated.Samples)
	}
	if Fit(clip, 0).Len() != 0 {
		t.Fatal("expected empty clip for zero slot")
	}
}

func TestResampleKeepsDuration(t *testing.T) {
	clip := tone(1000, 48000)
	got := Resample(clip, 24000)
	if got.SampleRate != 24000 {
		t.Fatalf("sample rate = %d", got.SampleRate)
	}
	if got.Len() != 24000 {
		t.Fatalf("len = %d, want 24000", got.Len())
	}
	if got.DurationMS() != 1000 {
		t.Fatalf("duration = %dms", got.DurationMS())
	}
}

func TestSilence(t *testing.T) {
	s := Silence(10, 8000)
	if s.Len() != 10 {
		t.Fatalf("len = %d", s.Len())
	}
	for _, v := range s.Samples {
		if v != 0 {
			t.Fatal("silence must be zero")
		}
	}
	if Silence(-1, 8000).Len() != 0 {
		t.Fatal("negative silence should be empty")
	}
}
