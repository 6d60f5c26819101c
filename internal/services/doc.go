// Package services defines shared utilities consumed by the workflow and the
// external integrations (recognizers, translators, synthesizers, ffmpeg).
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent job statuses.
//   - Call, which bounds every external request with a per-attempt timeout and
//     a single retry.
package services
