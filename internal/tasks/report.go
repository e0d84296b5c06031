package tasks

import (
	"context"
	"time"

	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/telemetry"
)

// LogStatus records a status change for a job record.
func LogStatus(ctx context.Context, log telemetry.Logger, kind Kind, recordID string, from Status, state State) {
	metrics.IncTask(string(kind), string(state.TaskStatus))
	fields := map[string]any{
		"kind":              string(kind),
		"record_id":         recordID,
		"status":            string(state.TaskStatus),
		"status_transition": string(from) + "->" + string(state.TaskStatus),
	}
	if id := requestid.From(ctx); id != "" {
		fields["request_id"] = id
	}
	if state.StartedAt != nil && state.CompletedAt != nil {
		ms := float64(state.CompletedAt.Sub(*state.StartedAt).Microseconds()) / 1000.0
		fields["duration_ms"] = ms
		metrics.ObserveTaskDurationMs(ms)
	}
	l := telemetry.OrDefault(log)
	if state.TaskStatus == StatusFailed {
		fields["error_code"] = state.ErrorCode
		fields["error"] = state.TaskError
		l.Error("task.status", fields)
		return
	}
	l.Info("task.status", fields)
}

// DefaultDeadline bounds a whole task run when no deadline is configured.
const DefaultDeadline = 5 * time.Minute

// DeadlineContext bounds one task run. A non-positive d leaves ctx unbounded.
func DeadlineContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
