package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"dubby/internal/config"
	"dubby/internal/jobs"
	"dubby/internal/media/ffprobe"
	"dubby/internal/media/remux"
	"dubby/internal/testsupport"
	"dubby/internal/transcript"
	"dubby/internal/workflow"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	media      string
	recognizer *stubRecognizer
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithOutputDir("out"))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("DUBBY_FFMPEG", "")
	t.Setenv("DUBBY_FFPROBE", "")

	configPath := filepath.Join(homeDir, ".config", "dubby", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	media := filepath.Join(base, "talk.mp3")
	testsupport.WriteFile(t, media, 1024)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		media:      media,
		recognizer: &stubRecognizer{segments: []transcript.Segment{
			{Start: 0, End: 5, Text: "hello there"},
			{Start: 5, End: 8, Text: ""},
			{Start: 8, End: 10, Text: "see you soon"},
		}},
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwork_dir = %q\noutput_dir = %q\nlog_dir = %q\nstate_dir = %q\n\n[openai]\napi_key = %q\n",
		cfg.Paths.WorkDir,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.StateDir,
		"",
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type stubRecognizer struct {
	segments []transcript.Segment
	calls    atomic.Int32
}

func (s *stubRecognizer) Recognize(context.Context, transcript.Source) ([]transcript.Segment, error) {
	s.calls.Add(1)
	return append([]transcript.Segment(nil), s.segments...), nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	return "[" + target + "] " + text, nil
}

func audioProbe(context.Context, string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "mp3", Channels: 2, Tags: map[string]string{"language": "eng"}}},
		Format:  ffprobe.Format{Duration: "10.000"},
	}, nil
}

// stubBuilder wires a real store and compositor around stubbed recognition.
func (env *cliTestEnv) stubBuilder(translator workflow.Translator) serviceBuilder {
	return func(cfg *config.Config, logger *slog.Logger) (*workflow.Service, error) {
		store, err := jobs.Open(cfg.JobsDBPath())
		if err != nil {
			return nil, err
		}
		return workflow.NewService(cfg, workflow.Dependencies{
			Recognizer: env.recognizer,
			Translator: translator,
			Compositor: remux.NewCompositor(cfg.FFmpegBinary(), logger),
			Probe:      audioProbe,
			Store:      store,
		}, logger), nil
	}
}

func runCLI(t *testing.T, args []string, configPath string, opts ...rootOption) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
