package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dubby/internal/jobs"
)

// Markers classify failures. Every error leaving a stage wraps exactly one.
var (
	// ErrInput covers requests rejected before any external call: unsupported
	// target language, unreadable source, no audio stream.
	ErrInput         = errors.New("input error")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap tags err with marker and prefixes it with "stage: operation: message",
// skipping blank parts. A nil marker means ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonEmpty(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// FailureStatus picks the terminal job status for err.
func FailureStatus(err error) jobs.Status {
	switch {
	case errors.Is(err, ErrInput):
		return jobs.StatusRejected
	case errors.Is(err, context.Canceled):
		return jobs.StatusCanceled
	}
	return jobs.StatusFailed
}

// Permanent reports whether retrying err cannot help.
func Permanent(err error) bool {
	for _, marker := range []error{ErrInput, ErrValidation, ErrConfiguration, context.Canceled} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
