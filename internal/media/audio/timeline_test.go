package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestTimelinePadAndAppend(t *testing.T) {
	tl := NewTimeline(8000)
	tl.PadTo(80)
	tl.Append([]int{1, 2, 3})
	tl.PadTo(50)
	if tl.Len() != 83 {
		t.Fatalf("len = %d, want 83", tl.Len())
	}
	if tl.DurationMS() != 10 {
		t.Fatalf("duration = %dms, want 10", tl.DurationMS())
	}
}

func TestTimelineMixAtSaturatesAndExtends(t *testing.T) {
	tl := NewTimeline(8000)
	tl.Append([]int{30000, 100, 100})
	tl.MixAt(0, []int{10000, 50, 50, 7})
	got := tl.Clip().Samples
	want := []int{32767, 150, 150, 7}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	tl.MixAt(6, []int{1})
	if tl.Len() != 7 || tl.Clip().Samples[5] != 0 {
		t.Fatalf("expected gap fill before mix past end, got %v", tl.Clip().Samples)
	}
}

func TestTimelineWriteWAVRoundTrip(t *testing.T) {
	tl := NewTimeline(16000)
	tl.Append(tone(250, 16000).Samples)
	path := filepath.Join(t.TempDir(), "track.wav")
	if err := tl.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	clip, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if clip.SampleRate != 16000 || clip.Len() != tl.Len() {
		t.Fatalf("decoded %d samples @%d, want %d @16000", clip.Len(), clip.SampleRate, tl.Len())
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestTimelineWriteEmptyWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	if err := NewTimeline(24000).WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat wav: %v", err)
	}
	if info.Size() < 44 {
		t.Fatalf("expected at least a wav header, got %d bytes", info.Size())
	}
}

func writeStereoWAV(t *testing.T, path string, left, right []int, rate int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()
	data := make([]int, 0, len(left)*2)
	for i := range left {
		data = append(data, left[i], right[i])
	}
	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	if err := enc.Write(&goaudio.IntBuffer{Data: data, Format: &goaudio.Format{SampleRate: rate, NumChannels: 2}, SourceBitDepth: 16}); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestDecodeWAVDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeStereoWAV(t, path, []int{100, 200, -400}, []int{300, 0, 400}, 22050)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	clip, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	want := []int{200, 100, 0}
	if clip.SampleRate != 22050 || len(clip.Samples) != len(want) {
		t.Fatalf("unexpected clip %+v", clip)
	}
	for i := range want {
		if clip.Samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, clip.Samples[i], want[i])
		}
	}
}

func TestDecodeWAVRejectsOtherPayloads(t *testing.T) {
	if _, err := DecodeWAV([]byte("ID3\x03not really mp3")); err == nil {
		t.Fatal("expected error for non-wav payload")
	}
}

func TestDecoderTranscodesNonWAV(t *testing.T) {
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		out := args[len(args)-1]
		if err := WriteWAV(out, tone(500, 24000)); err != nil {
			return nil, err
		}
		return nil, nil
	}
	dec := NewDecoder("ffmpeg", t.TempDir(), 24000, WithDecoderRunner(runner))
	clip, err := dec.Decode(context.Background(), []byte("ID3 mp3 bytes"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.DurationMS() != 500 {
		t.Fatalf("duration = %dms, want 500", clip.DurationMS())
	}
	if len(gotArgs) == 0 || gotArgs[0] != "ffmpeg" {
		t.Fatalf("expected ffmpeg invocation, got %v", gotArgs)
	}
	if filepath.Base(gotArgs[len(gotArgs)-1]) != "output.wav" {
		t.Fatalf("unexpected output target %v", gotArgs)
	}
}

func TestDecoderResamplesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := WriteWAV(path, tone(1000, 48000)); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	runner := func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("wav input should not be transcoded")
		return nil, nil
	}
	clip, err := NewDecoder("", t.TempDir(), 24000, WithDecoderRunner(runner)).Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.SampleRate != 24000 || clip.Len() != 24000 {
		t.Fatalf("unexpected clip rate=%d len=%d", clip.SampleRate, clip.Len())
	}
}
