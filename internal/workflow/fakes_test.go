package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dubby/internal/config"
	"dubby/internal/dubbing"
	"dubby/internal/media/audio"
	"dubby/internal/media/ffprobe"
	"dubby/internal/services"
	"dubby/internal/testsupport"
	"dubby/internal/transcript"
)

const testRate = 8000

type fakeRecognizer struct {
	segments []transcript.Segment
	err      error
	hook     func()
	calls    atomic.Int32
	last     transcript.Source
}

func (f *fakeRecognizer) Recognize(ctx context.Context, source transcript.Source) ([]transcript.Segment, error) {
	f.calls.Add(1)
	f.last = source
	if f.hook != nil {
		f.hook()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]transcript.Segment(nil), f.segments...), nil
}

type fakeTranslator struct {
	failOn string
	calls  atomic.Int32
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	f.calls.Add(1)
	if f.failOn != "" && text == f.failOn {
		return "", services.Wrap(services.ErrValidation, "translate", "chat", "rejected", nil)
	}
	return "[" + target + "] " + text, nil
}

type fakeSynthesizer struct {
	wav   []byte
	fail  bool
	mu    sync.Mutex
	texts []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.fail {
		return nil, services.Wrap(services.ErrValidation, "tts", "speech", "voice unavailable", nil)
	}
	return f.wav, nil
}

type composeCall struct {
	video, audio, output string
	audioSamples         int
}

type fakeCompositor struct {
	err   error
	calls []composeCall
}

func (f *fakeCompositor) record(videoPath, audioPath, outputPath string) error {
	call := composeCall{video: videoPath, audio: audioPath, output: outputPath}
	if data, err := os.ReadFile(audioPath); err == nil {
		if clip, err := audio.DecodeWAV(data); err == nil {
			call.audioSamples = clip.Len()
		}
	}
	f.calls = append(f.calls, call)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("muxed"), 0o644)
}

func (f *fakeCompositor) Compose(_ context.Context, videoPath, audioPath, outputPath string) error {
	return f.record(videoPath, audioPath, outputPath)
}

func (f *fakeCompositor) ComposeAudioOnly(_ context.Context, audioPath, outputPath string) error {
	return f.record("", audioPath, outputPath)
}

func videoProbe(calls *atomic.Int32) ProbeFunc {
	return func(context.Context, string) (ffprobe.Result, error) {
		calls.Add(1)
		return ffprobe.Result{
			Streams: []ffprobe.Stream{
				{Index: 0, CodecType: "video", CodecName: "h264"},
				{Index: 1, CodecType: "audio", CodecName: "aac", Channels: 2, Tags: map[string]string{"language": "spa"}},
				{Index: 2, CodecType: "audio", CodecName: "aac", Channels: 2, Tags: map[string]string{"language": "eng"}},
			},
			Format: ffprobe.Format{Duration: "10.000"},
		}, nil
	}
}

func audioOnlyProbe(context.Context, string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "mp3", Channels: 1}},
		Format:  ffprobe.Format{Duration: "10.000"},
	}, nil
}

type harness struct {
	cfg         *config.Config
	source      string
	recognizer  *fakeRecognizer
	translator  *fakeTranslator
	synthesizer *fakeSynthesizer
	compositor  *fakeCompositor
	probeCalls  atomic.Int32
	deps        Dependencies
}

func newHarness(t *testing.T, segments []transcript.Segment, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithOutputDir("out")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Dubbing.SampleRate = testRate

	source := filepath.Join(testsupport.BaseDir(cfg), "media", "talk.mp4")
	testsupport.WriteFile(t, source, 64)

	h := &harness{
		cfg:         cfg,
		source:      source,
		recognizer:  &fakeRecognizer{segments: segments},
		translator:  &fakeTranslator{},
		synthesizer: &fakeSynthesizer{wav: testsupport.WAVBytes(t, testRate, testsupport.Tone(testRate, 1000))},
		compositor:  &fakeCompositor{},
	}
	h.deps = Dependencies{
		Recognizer:  h.recognizer,
		Translator:  h.translator,
		Synthesizer: h.synthesizer,
		Decoder:     audio.NewDecoder("", cfg.Paths.WorkDir, testRate),
		Assembler: dubbing.NewAssembler(dubbing.Options{
			SampleRate: testRate,
			Workers:    2,
			Synthesize: services.CallPolicy{Timeout: time.Second, Delay: time.Millisecond},
		}, nil),
		Compositor: h.compositor,
		Probe:      videoProbe(&h.probeCalls),
		Store:      testsupport.MustOpenStore(t, cfg),
	}
	return h
}

func (h *harness) start(t *testing.T) *Service {
	t.Helper()
	svc := NewService(h.cfg, h.deps, nil)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return svc
}

func assertWorkDirEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected work dir to be cleaned, found %s", strings.Join(names, ", "))
	}
}

var errBoom = errors.New("boom")
