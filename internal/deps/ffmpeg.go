package deps

import (
	"os"
	"strings"
)

// ResolveFFmpegPath returns the ffmpeg binary to execute. An explicit value
// wins, then the DUBBY_FFMPEG environment variable, then "ffmpeg" from PATH.
func ResolveFFmpegPath(configured string) string {
	return resolveBinary(configured, "DUBBY_FFMPEG", "ffmpeg")
}

// ResolveFFprobePath returns the ffprobe binary to execute using the same
// precedence as ResolveFFmpegPath with DUBBY_FFPROBE.
func ResolveFFprobePath(configured string) string {
	return resolveBinary(configured, "DUBBY_FFPROBE", "ffprobe")
}

func resolveBinary(configured, envKey, fallback string) string {
	if value := strings.TrimSpace(configured); value != "" {
		return value
	}
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
