package logging

import (
	"context"
	"log/slog"

	"audex/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID identifies the export job a log line belongs to.
	FieldJobID = "job_id"
	// FieldSource is the source media path of an export.
	FieldSource = "source"
	// FieldFormat is the target audio format of an export.
	FieldFormat = "format"
	// FieldOutput is the output path of an export.
	FieldOutput = "output"
	// FieldProgress is a fractional progress value in [0,1].
	FieldProgress = "progress"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step when something went wrong.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, JobID(id))
	}
	if format, ok := services.FormatFromContext(ctx); ok {
		fields = append(fields, Format(format))
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
	return logger.With(args(fields)...)
}
