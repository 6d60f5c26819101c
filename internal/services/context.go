package services

import "context"

type contextKey int

const (
	jobIDKey contextKey = iota
	actionKey
	stageKey
	requestIDKey
)

// withString stores a non-empty value under key; empty values leave ctx untouched
// so an outer annotation is never masked.
func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithJobID annotates ctx with the job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	return withString(ctx, jobIDKey, id)
}

func JobIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, jobIDKey) }

// WithAction records whether the job captions or dubs.
func WithAction(ctx context.Context, action string) context.Context {
	return withString(ctx, actionKey, action)
}

func ActionFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, actionKey) }

// WithStage annotates ctx with the pipeline stage currently executing.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, stageKey) }

// WithRequestID attaches the per-run correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, requestIDKey) }
