package subtitles

import (
	"fmt"
	"strings"
)

// Format selects the caption serialization.
type Format string

const (
	FormatVTT Format = "vtt"
	FormatSRT Format = "srt"
)

// ParseFormat accepts a format name case-insensitively. Empty selects VTT.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "vtt", "webvtt":
		return FormatVTT, nil
	case "srt", "subrip":
		return FormatSRT, nil
	default:
		return "", fmt.Errorf("unsupported caption format %q", value)
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	if f == FormatSRT {
		return ".srt"
	}
	return ".vtt"
}
