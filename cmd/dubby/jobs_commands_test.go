package main

import (
	"encoding/json"
	"testing"
)

func TestJobsListShowClear(t *testing.T) {
	env := setupCLITestEnv(t)
	builder := withServiceBuilder(env.stubBuilder(nil))

	out, _, err := runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")

	if _, _, err := runCLI(t, []string{"caption", env.media, "--lang", "en", "--json"}, env.configPath, builder); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if _, _, err := runCLI(t, []string{"caption", env.media, "--lang", "fr"}, env.configPath, builder); err == nil {
		t.Fatal("expected rejected job")
	}

	out, _, err = runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "rejected")
	requireContains(t, out, "talk.mp3")

	out, _, err = runCLI(t, []string{"jobs", "list", "--status", "completed", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list --json: %v", err)
	}
	var views []jobView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(views) != 1 || views[0].Status != "completed" || views[0].CaptionPath == "" {
		t.Fatalf("unexpected list: %+v", views)
	}

	out, _, err = runCLI(t, []string{"jobs", "show", views[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, views[0].ID)
	requireContains(t, out, views[0].CaptionPath)

	if _, _, err := runCLI(t, []string{"jobs", "show", "deadbeefdeadbeef"}, env.configPath); err == nil {
		t.Fatal("expected unknown job to fail")
	}

	out, _, err = runCLI(t, []string{"jobs", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs stats: %v", err)
	}
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"jobs", "clear", "--status", "rejected"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 jobs")

	out, _, err = runCLI(t, []string{"jobs", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 jobs")
}

func TestJobsClearRejectsConflictingFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"jobs", "clear", "--all", "--status", "failed"}, env.configPath); err == nil {
		t.Fatal("expected conflicting flags to fail")
	}
	if _, _, err := runCLI(t, []string{"jobs", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
