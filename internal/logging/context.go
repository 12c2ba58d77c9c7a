package logging

import (
	"context"
	"log/slog"

	"shadowkit/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldProject is the standardized key for the project directory.
	FieldProject = "project"
	// FieldRunID is the standardized key for sweep run identifiers.
	FieldRunID = "run_id"
	// FieldBaseName is the standardized key for the master/shadow join key.
	FieldBaseName = "base_name"
	// FieldTier is the standardized key for the lifecycle tier (active/archived).
	FieldTier = "tier"
	// FieldItemIndex is the 1-based position of an item within a sweep.
	FieldItemIndex = "item_index"
	// FieldItemCount is the total number of items in a sweep.
	FieldItemCount = "item_count"
	// FieldCorrelationID is the standardized key for caller correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType names the event for log filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if project, ok := services.ProjectFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProject, project))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
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
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
