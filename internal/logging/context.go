package logging

import (
	"context"
	"log/slog"

	"dubby/internal/services"
)

// Structured keys shared by every component.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldAction        = "action"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"

	// FieldEventType is a stable machine-readable event name; grep for it
	// rather than for messages.
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	// FieldImpact states what the user loses when a warning fires.
	FieldImpact = "impact"
	FieldAlert  = "alert"
)

var contextKeys = []struct {
	field string
	get   func(context.Context) (string, bool)
}{
	{FieldJobID, services.JobIDFromContext},
	{FieldAction, services.ActionFromContext},
	{FieldStage, services.StageFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the job annotations carried by ctx, in a fixed order.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, k := range contextKeys {
		if v, ok := k.get(ctx); ok {
			fields = append(fields, slog.String(k.field, v))
		}
	}
	return fields
}

// WithContext binds the job annotations of ctx to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
