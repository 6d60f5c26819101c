// Package logs reads the dubby log file for `dubby logs`: the last N lines,
// then optionally new lines as they are appended. Memory is bounded by N
// regardless of file size.
package logs
