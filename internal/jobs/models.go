package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusRejected,
	StatusCanceled,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus validates a status name.
func ParseStatus(value string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", value)
}

// IsTerminal reports whether no further transitions will happen.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}

// Action is the kind of output a job produces.
type Action string

const (
	ActionCaption Action = "caption"
	ActionDub     Action = "dub"
)

// ParseAction accepts the action names and their front-end aliases
// ("subtitle", "dubbing").
func ParseAction(value string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "caption", "captions", "subtitle", "subtitles":
		return ActionCaption, nil
	case "dub", "dubbing":
		return ActionDub, nil
	default:
		return "", fmt.Errorf("unknown action %q (want caption or dub)", value)
	}
}

// Job is one persisted workflow run.
type Job struct {
	ID             string
	Action         Action
	SourcePath     string
	SourceLanguage string
	TargetLanguage string
	Status         Status
	Stage          string
	CaptionPath    string
	VideoPath      string
	AudioPath      string
	ErrorMessage   string
	Warnings       []string
	SegmentCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Artifacts lists the output paths the job produced.
func (j *Job) Artifacts() []string {
	var out []string
	for _, path := range []string{j.CaptionPath, j.VideoPath, j.AudioPath} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// ClearArtifacts drops every output path, used when a job fails after some
// files were planned.
func (j *Job) ClearArtifacts() {
	j.CaptionPath = ""
	j.VideoPath = ""
	j.AudioPath = ""
}
