package dubbing

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dubby/internal/media/audio"
	"dubby/internal/services"
	"dubby/internal/transcript"
)

const testRate = 8000

func constClip(ms int64, value int) audio.Clip {
	samples := make([]int, audio.SamplesForMS(ms, testRate))
	for i := range samples {
		samples[i] = value
	}
	return audio.Clip{Samples: samples, SampleRate: testRate}
}

// fixedSynth returns a clip of naturalMS for any text.
func fixedSynth(naturalMS int64) SynthesizeFunc {
	return func(context.Context, string) (audio.Clip, error) {
		return constClip(naturalMS, 1000), nil
	}
}

func newTestAssembler(opts Options) *Assembler {
	opts.SampleRate = testRate
	opts.Synthesize.Delay = time.Millisecond
	return NewAssembler(opts, nil)
}

func TestAssembleLengthMatchesLastSegmentEnd(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 1.5, Text: "a"},
		{Start: 2, End: 3.25, Text: "b"},
		{Start: 3.25, End: 5.004, Text: "c"},
	}
	tl, report, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, fixedSynth(700), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if want := audio.SamplesForMS(5004, testRate); tl.Len() != want {
		t.Fatalf("timeline len = %d, want %d", tl.Len(), want)
	}
	if tl.DurationMS() != 5004 {
		t.Fatalf("duration = %dms, want 5004ms", tl.DurationMS())
	}
	if report.Placed != 3 || report.Err() != nil {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestAssembleFillsEachSlotExactly(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0.5, End: 1.25, Text: "short"},
		{Start: 2, End: 4, Text: "long"},
	}
	tl, _, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, fixedSynth(1300), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	samples := tl.Clip().Samples
	inSlot := func(i int) bool {
		for _, seg := range segments {
			if i >= audio.SamplesForMS(seg.StartMS(), testRate) && i < audio.SamplesForMS(seg.EndMS(), testRate) {
				return true
			}
		}
		return false
	}
	for i, v := range samples {
		if inSlot(i) && v != 1000 {
			t.Fatalf("sample %d inside a slot = %d, want 1000", i, v)
		}
		if !inSlot(i) && v != 0 {
			t.Fatalf("sample %d in a gap = %d, want silence", i, v)
		}
	}
}

func TestAssembleLongClipIntoShortSlot(t *testing.T) {
	segments := []transcript.Segment{{Start: 0, End: 1.5, Text: "squeeze"}}
	tl, report, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, fixedSynth(3000), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tl.DurationMS() != 1500 || report.Clamped != 0 {
		t.Fatalf("duration = %dms clamped = %d", tl.DurationMS(), report.Clamped)
	}
}

func TestAssembleIgnoresZeroAndEmptySegments(t *testing.T) {
	base := []transcript.Segment{
		{Start: 0, End: 1, Text: "one"},
		{Start: 2, End: 3, Text: "two"},
	}
	noisy := []transcript.Segment{
		{Start: 0, End: 1, Text: "one"},
		{Start: 1.5, End: 1.5, Text: "zero"},
		{Start: 1.6, End: 1.9, Text: "   "},
		{Start: 2.5, End: 2.1, Text: "backwards"},
		{Start: 2, End: 3, Text: "two"},
	}
	a := newTestAssembler(Options{})
	want, _, err := a.Assemble(context.Background(), base, fixedSynth(500), nil)
	if err != nil {
		t.Fatalf("Assemble base: %v", err)
	}
	got, report, err := a.Assemble(context.Background(), noisy, fixedSynth(500), nil)
	if err != nil {
		t.Fatalf("Assemble noisy: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), want.Len())
	}
	if report.Skipped != 3 || report.Placed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	gs, ws := got.Clip().Samples, want.Clip().Samples
	for i := range ws {
		if gs[i] != ws[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, gs[i], ws[i])
		}
	}
}

func TestAssembleMixesOverlap(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 2, Text: "first"},
		{Start: 1, End: 3, Text: "second"},
	}
	tl, report, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, fixedSynth(2000), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tl.Len() != audio.SamplesForMS(3000, testRate) {
		t.Fatalf("len = %d", tl.Len())
	}
	if report.Overlaps != 1 {
		t.Fatalf("overlaps = %d, want 1", report.Overlaps)
	}
	samples := tl.Clip().Samples
	if v := samples[audio.SamplesForMS(1500, testRate)]; v != 2000 {
		t.Fatalf("overlap sample = %d, want 2000", v)
	}
	if v := samples[audio.SamplesForMS(2500, testRate)]; v != 1000 {
		t.Fatalf("tail sample = %d, want 1000", v)
	}
}

func TestAssembleSynthesisFailureLeavesSilentSlot(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 1, Text: "ok"},
		{Start: 1, End: 2, Text: "broken"},
		{Start: 2, End: 3, Text: "fine"},
		{Start: 3, End: 4, Text: "broken"},
	}
	synth := func(_ context.Context, text string) (audio.Clip, error) {
		if text == "broken" {
			return audio.Clip{}, services.Wrap(services.ErrValidation, "synthesize", "create speech", "rejected", nil)
		}
		return constClip(800, 1000), nil
	}
	tl, report, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, synth, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tl.Len() != audio.SamplesForMS(4000, testRate) {
		t.Fatalf("len = %d, want %d", tl.Len(), audio.SamplesForMS(4000, testRate))
	}
	if report.Failed != 2 || report.Placed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Messages()) != 2 || !strings.Contains(report.Messages()[0], "segment 1") {
		t.Fatalf("unexpected warnings %v", report.Messages())
	}
	if v := tl.Clip().Samples[audio.SamplesForMS(1500, testRate)]; v != 0 {
		t.Fatalf("failed slot should be silent, got %d", v)
	}
}

func TestAssembleRetriesTransientSynthesis(t *testing.T) {
	var calls atomic.Int32
	synth := func(context.Context, string) (audio.Clip, error) {
		if calls.Add(1) == 1 {
			return audio.Clip{}, services.ErrTransient
		}
		return constClip(500, 1000), nil
	}
	segments := []transcript.Segment{{Start: 0, End: 1, Text: "retry me"}}
	_, report, err := newTestAssembler(Options{}).Assemble(context.Background(), segments, synth, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if calls.Load() != 2 || report.Placed != 1 {
		t.Fatalf("calls = %d report = %+v", calls.Load(), report)
	}
}

func TestAssembleTranslationFallback(t *testing.T) {
	var seen []string
	synth := func(_ context.Context, text string) (audio.Clip, error) {
		return constClip(500, 1000), nil
	}
	translate := func(_ context.Context, text string) transcript.TranslationResult {
		if text == "fail" {
			return transcript.TranslationResult{Err: errors.New("service unavailable")}
		}
		return transcript.TranslationResult{Text: strings.ToUpper(text)}
	}
	recording := func(ctx context.Context, text string) (audio.Clip, error) {
		seen = append(seen, text)
		return synth(ctx, text)
	}
	segments := []transcript.Segment{{Start: 0, End: 1, Text: "fail"}}
	_, report, err := newTestAssembler(Options{Workers: 1}).Assemble(context.Background(), segments, recording, translate)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if report.Fallbacks != 1 || report.Placed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(seen) != 1 || seen[0] != "fail" {
		t.Fatalf("synthesized %v, want source text", seen)
	}
	if report.Err() == nil {
		t.Fatal("expected fallback warning")
	}
}

func TestAssembleClampPolicy(t *testing.T) {
	segments := []transcript.Segment{{Start: 0, End: 1, Text: "too long"}}
	tests := []struct {
		name     string
		overflow bool
		wantMS   int64
	}{
		{"trim to slot", false, 1000},
		{"allow overflow", true, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssembler(Options{MaxSpeedRatio: 1.5, ClampOverflow: tt.overflow})
			tl, report, err := a.Assemble(context.Background(), segments, fixedSynth(3000), nil)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if tl.DurationMS() != tt.wantMS {
				t.Fatalf("duration = %dms, want %dms", tl.DurationMS(), tt.wantMS)
			}
			if report.Clamped != 1 {
				t.Fatalf("clamped = %d, want 1", report.Clamped)
			}
		})
	}
}

func TestAssembleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	synth := func(ctx context.Context, _ string) (audio.Clip, error) {
		cancel()
		<-ctx.Done()
		return audio.Clip{}, ctx.Err()
	}
	segments := []transcript.Segment{{Start: 0, End: 1, Text: "a"}, {Start: 1, End: 2, Text: "b"}}
	tl, _, err := newTestAssembler(Options{Workers: 1}).Assemble(ctx, segments, synth, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tl != nil {
		t.Fatal("timeline must be discarded on cancellation")
	}
}

func TestAssembleBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	synth := func(context.Context, string) (audio.Clip, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return constClip(100, 1000), nil
	}
	segments := make([]transcript.Segment, 12)
	for i := range segments {
		segments[i] = transcript.Segment{Start: float64(i), End: float64(i) + 0.5, Text: "x"}
	}
	_, report, err := newTestAssembler(Options{Workers: 3}).Assemble(context.Background(), segments, synth, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if peak.Load() > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak.Load())
	}
	if report.Placed != len(segments) {
		t.Fatalf("placed = %d", report.Placed)
	}
}

func TestAssembleRequiresSynthesizer(t *testing.T) {
	_, _, err := newTestAssembler(Options{}).Assemble(context.Background(), nil, nil, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

type stubSynth struct{ lang string }

func (s *stubSynth) Synthesize(_ context.Context, text, lang string) ([]byte, error) {
	s.lang = lang
	return []byte(text), nil
}

type stubDecoder struct{}

func (stubDecoder) Decode(_ context.Context, data []byte) (audio.Clip, error) {
	return constClip(int64(len(data))*100, 1), nil
}

func TestSynthesizeWith(t *testing.T) {
	s := &stubSynth{}
	clip, err := SynthesizeWith(s, stubDecoder{}, "ko")(context.Background(), "abc")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if s.lang != "ko" || clip.DurationMS() != 300 {
		t.Fatalf("lang = %q duration = %d", s.lang, clip.DurationMS())
	}
}
