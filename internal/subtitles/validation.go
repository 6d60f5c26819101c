package subtitles

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Cues ending later than this past the media duration are reported.
const durationToleranceSeconds = 8.0

type cueBounds struct {
	start, end float64
}

func parseCueLines(content string) ([]cueBounds, int) {
	var cues []cueBounds
	invalid := 0
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			invalid++
			continue
		}
		// VTT cue settings may follow the end timestamp.
		endField := strings.Fields(parts[1])
		if len(endField) == 0 {
			invalid++
			continue
		}
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(endField[0])
		if errStart != nil || errEnd != nil {
			invalid++
			continue
		}
		cues = append(cues, cueBounds{start: start, end: end})
	}
	return cues, invalid
}

// ValidateContent checks a written caption file. It returns the issues found;
// an empty slice means validation passed. mediaSeconds <= 0 skips the
// duration check.
func ValidateContent(path string, mediaSeconds float64) []string {
	var issues []string

	data, err := os.ReadFile(path)
	if err != nil {
		return append(issues, fmt.Sprintf("read_error: %v", err))
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	if strings.EqualFold(filepath.Ext(path), ".vtt") && !strings.HasPrefix(content, "WEBVTT") {
		issues = append(issues, "missing_webvtt_header")
	}

	cues, invalid := parseCueLines(content)
	if len(cues) == 0 && invalid == 0 {
		return append(issues, "empty_subtitle_file")
	}
	if invalid > 0 {
		issues = append(issues, fmt.Sprintf("timestamp_parse_error: %d cue(s)", invalid))
	}

	last := 0.0
	prevStart := math.Inf(-1)
	ordered := true
	for _, cue := range cues {
		if cue.end <= cue.start || cue.start < prevStart {
			ordered = false
		}
		prevStart = cue.start
		last = math.Max(last, cue.end)
	}
	if !ordered {
		issues = append(issues, "non_monotonic_timestamps")
	}

	if mediaSeconds > 0 && last-mediaSeconds > durationToleranceSeconds {
		issues = append(issues, fmt.Sprintf("duration_mismatch: delta=%.1fs", last-mediaSeconds))
	}
	return issues
}
