package analyses

import (
	"context"

	"hirevision-backend/internal/tasks"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	// UpdateState writes the task state; a nil result leaves the stored result alone.
	UpdateState(ctx context.Context, analysisID string, state tasks.State, result *Result) error
}
