package learningpaths

import (
	"context"

	"hirevision-backend/internal/tasks"
)

// Repo persists learning path records.
type Repo interface {
	Create(ctx context.Context, path LearningPath) error
	GetByID(ctx context.Context, id string) (LearningPath, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]LearningPath, error)
	UpdateState(ctx context.Context, id string, state tasks.State, result *Result) error
}
