package logging

import (
	"context"
	"log/slog"

	"highlighter/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldClipPath is the standardized structured logging key for a clip's source path.
	FieldClipPath = "clip_path"
	// FieldCorrelationID is the standardized structured logging key for invocation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldGeneration is the standardized structured logging key for decode source generations.
	FieldGeneration = "generation"
	// FieldErrorKind carries services.Kind for failed operations.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if path, ok := services.ClipPathFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldClipPath, path))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
