package services

import "context"

type contextKey string

const (
	clipPathKey  contextKey = "clip_path"
	requestIDKey contextKey = "request_id"
)

// WithClipPath annotates context with the clip's source path.
func WithClipPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, clipPathKey, path)
}

// ClipPathFromContext returns the clip source path if present.
func ClipPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(clipPathKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
