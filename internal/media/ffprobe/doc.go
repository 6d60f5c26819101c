// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns the parsed Result. Helpers on Result
// answer the questions the workflow asks before processing a file: does it
// have speech audio, is there a video stream to keep, and how long is it.
package ffprobe
