package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an executable a job shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements only warn when missing.
	Optional bool
}

// Status is a Requirement after a PATH lookup. Path holds the resolved
// executable when Available.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Check resolves one requirement.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// Requirements lists the binaries a job needs. WhisperX runs through uvx, so
// uvx is only required when that backend is selected.
func Requirements(ffmpeg, ffprobe string, whisperx bool) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ResolveFFmpegPath(ffmpeg), Description: "speech extraction, dub encoding and remuxing"},
		{Name: "FFprobe", Command: ResolveFFprobePath(ffprobe), Description: "stream inspection"},
		{Name: "uvx", Command: "uvx", Description: "runs WhisperX for local recognition", Optional: !whisperx},
	}
}

// Missing filters statuses down to unavailable required binaries.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if status.Optional || status.Available {
			continue
		}
		missing = append(missing, status)
	}
	return missing
}
