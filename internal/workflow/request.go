package workflow

import (
	"encoding/json"

	"dubby/internal/jobs"
)

// Request describes one job.
type Request struct {
	Action     jobs.Action
	SourcePath string
	// TargetLanguage is the caption or dub language. It must be in the
	// configured supported set.
	TargetLanguage string
	// SourceLanguage overrides languages.source when set.
	SourceLanguage string
	// KeepTrack keeps the assembled WAV next to the dubbed output.
	KeepTrack bool
	// OutputDir overrides paths.output_dir when set.
	OutputDir string
}

// Result is the outcome of Run. On failure only JobID and Error are set.
type Result struct {
	JobID       string   `json:"job_id,omitempty"`
	Status      string   `json:"status,omitempty"`
	CaptionPath string   `json:"subtitle_path,omitempty"`
	VideoPath   string   `json:"video_path,omitempty"`
	AudioPath   string   `json:"audio_path,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`

	err error
}

// Err returns the error that stopped the job, if any.
func (r Result) Err() error { return r.err }

// Succeeded reports whether the job produced its artifacts.
func (r Result) Succeeded() bool { return r.err == nil }

// JSON renders the result object printed by --json.
func (r Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func resultFromJob(job *jobs.Job, err error) Result {
	res := Result{err: err}
	if job != nil {
		res.JobID = job.ID
		res.Status = string(job.Status)
		res.Warnings = append([]string(nil), job.Warnings...)
		if err == nil {
			res.CaptionPath = job.CaptionPath
			res.VideoPath = job.VideoPath
			res.AudioPath = job.AudioPath
		}
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
