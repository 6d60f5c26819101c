package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"dubby/internal/services"
	"dubby/internal/transcript"
)

type fakeRun struct {
	calls   [][]string
	payload string
	failOn  string
}

func (f *fakeRun) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if name == f.failOn {
		return nil, errors.New("boom")
	}
	if name == UVXCommand {
		outDir := args[slices.Index(args, "--output_dir")+1]
		source := args[slices.Index(args, "whisperx")+1]
		path := filepath.Join(outDir, outputJSONName(filepath.Base(source)))
		if err := os.WriteFile(path, []byte(f.payload), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func TestRecognizeParsesSegments(t *testing.T) {
	fake := &fakeRun{payload: `{"segments":[{"text":" Hello there ","start":0.5,"end":2.25},{"text":"General","start":2.5,"end":3}]}`}
	workDir := t.TempDir()
	r := NewRecognizer(Config{Model: "small"}, "ffmpeg", workDir, nil, WithCommandRunner(fake.run))

	segments, err := r.Recognize(context.Background(), transcript.Source{Path: "/media/talk.mp4", Language: "en"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "Hello there" || segments[0].Start != 0.5 || segments[0].End != 2.25 {
		t.Fatalf("unexpected first segment %+v", segments[0])
	}
	if len(fake.calls) != 2 || fake.calls[0][0] != "ffmpeg" || fake.calls[1][0] != UVXCommand {
		t.Fatalf("unexpected calls %v", fake.calls)
	}
	uvxArgs := strings.Join(fake.calls[1], " ")
	for _, want := range []string{"--model small", "--language en", "--output_format json", "--device cpu"} {
		if !strings.Contains(uvxArgs, want) {
			t.Fatalf("uvx args missing %q: %s", want, uvxArgs)
		}
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch directory not removed: %v", entries)
	}
}

func TestRecognizeExtractFailure(t *testing.T) {
	fake := &fakeRun{failOn: "ffmpeg"}
	r := NewRecognizer(Config{}, "ffmpeg", t.TempDir(), nil, WithCommandRunner(fake.run))
	_, err := r.Recognize(context.Background(), transcript.Source{Path: "/media/talk.mp4", Language: "en"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("whisperx should not run after extract failure, calls=%v", fake.calls)
	}
}

func TestRecognizeRejectsEmptyPath(t *testing.T) {
	r := NewRecognizer(Config{}, "", t.TempDir(), nil)
	if _, err := r.Recognize(context.Background(), transcript.Source{Path: " ", Language: "en"}); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestBuildArgsCUDAAndPyannote(t *testing.T) {
	r := NewRecognizer(Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf_x"}, "", "", nil)
	args := strings.Join(r.buildArgs("in.wav", "/out", ""), " ")
	for _, want := range []string{"--index-url " + CUDAIndexURL, "--vad_method pyannote", "--hf_token hf_x", "--device cuda", "--model " + DefaultModel} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q: %s", want, args)
		}
	}
	if strings.Contains(args, "--language") {
		t.Fatalf("language flag should be omitted: %s", args)
	}
}
