// Package logging builds the slog loggers dubby writes to stderr and to
// <log_dir>/dubby.log.
//
// Two handlers are available: a console handler that folds component, job and
// stage into a readable header, and a JSON handler for machine consumption.
// WithContext copies the job annotations set through the services package onto
// a logger; WarnWithContext and ErrorWithContext guarantee every warning names
// an event type, a hint and its impact.
package logging
