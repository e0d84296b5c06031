package analyses

import (
	"context"
	"time"

	"hirevision-backend/internal/tasks"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	store *tasks.MemoryStore[Analysis]
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: tasks.NewMemoryStore[Analysis]()}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	return r.store.Put(ctx, analysis)
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	return r.store.Get(ctx, analysisID)
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	return r.store.ListByUser(ctx, userID, limit, offset)
}

// UpdateState updates task state and, when given, the result.
func (r *MemoryRepo) UpdateState(ctx context.Context, analysisID string, state tasks.State, result *Result) error {
	return r.store.Update(ctx, analysisID, func(a *Analysis) {
		a.State = state
		if result != nil {
			res := *result
			a.Result = &res
		}
		a.UpdatedAt = time.Now().UTC()
	})
}
