package resumebuilds

import (
	"context"

	"hirevision-backend/internal/tasks"
)

// Repo defines persistence operations for resume builds.
type Repo interface {
	Create(ctx context.Context, build ResumeBuild) error
	GetByID(ctx context.Context, id string) (ResumeBuild, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeBuild, error)
	// UpdateState stores the task state. A nil result and an empty latexKey
	// leave the stored values unchanged.
	UpdateState(ctx context.Context, id string, state tasks.State, result *Result, latexKey string) error
}
