package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCaptionCommandWritesVTT(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"caption", env.media, "--lang", "en"}, env.configPath, withServiceBuilder(env.stubBuilder(nil)))
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	requireContains(t, out, "completed")

	vtt := filepath.Join(env.cfg.Paths.OutputDir, "talk.en.vtt")
	requireContains(t, out, vtt)
	data, err := os.ReadFile(vtt)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	content := string(data)
	requireContains(t, content, "WEBVTT")
	requireContains(t, content, "00:00:00.000 --> 00:00:05.000")
	requireContains(t, content, "00:00:08.000 --> 00:00:10.000")
	if strings.Contains(content, "00:00:05.000 --> 00:00:08.000") {
		t.Fatalf("empty segment should not produce a cue:\n%s", content)
	}
}

func TestCaptionCommandJSONTranslated(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"subtitle", env.media, "--lang", "ko", "--json"}, env.configPath, withServiceBuilder(env.stubBuilder(stubTranslator{})))
	if err != nil {
		t.Fatalf("subtitle alias: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json %q: %v", out, err)
	}
	path, _ := payload["subtitle_path"].(string)
	if filepath.Base(path) != "talk.ko.vtt" {
		t.Fatalf("subtitle_path = %q", path)
	}
	if payload["status"] != "completed" {
		t.Fatalf("status = %v", payload["status"])
	}
	if _, ok := payload["error"]; ok {
		t.Fatalf("unexpected error key in %v", payload)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	requireContains(t, string(data), "[ko]")
}

func TestCaptionCommandOutputDirFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "elsewhere")

	_, _, err := runCLI(t, []string{"caption", env.media, "--lang", "en", "-o", dir}, env.configPath, withServiceBuilder(env.stubBuilder(nil)))
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "talk.en.vtt")); err != nil {
		t.Fatalf("expected captions in %s: %v", dir, err)
	}
}

func TestCaptionCommandRejectsUnsupportedLanguage(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"caption", env.media, "--lang", "fr", "--json"}, env.configPath, withServiceBuilder(env.stubBuilder(nil)))
	var reported *reportedError
	if !errors.As(err, &reported) {
		t.Fatalf("expected reported error, got %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json %q: %v", out, err)
	}
	if payload["status"] != "rejected" {
		t.Fatalf("status = %v", payload["status"])
	}
	if _, ok := payload["subtitle_path"]; ok {
		t.Fatalf("rejected job must not report a path: %v", payload)
	}
	if env.recognizer.calls.Load() != 0 {
		t.Fatalf("recognizer called for rejected job")
	}
}

func TestDubCommandWithoutCredentials(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"dubbing", env.media, "--lang", "en"}, env.configPath, withServiceBuilder(env.stubBuilder(nil)))
	if err == nil {
		t.Fatal("expected dub without synthesizer to fail")
	}
	requireContains(t, out, "openai.api_key")
	if env.recognizer.calls.Load() != 0 {
		t.Fatalf("recognizer called before credentials check")
	}
}

func TestJobCommandRequiresLangAndSource(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"caption", env.media}, env.configPath); err == nil {
		t.Fatal("expected missing --lang to fail")
	}
	_, _, err := runCLI(t, []string{"dub", "--lang", "ko"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing source to fail")
	}
	requireContains(t, err.Error(), "provide the path to one media file")
}
