package resumebuilds

import (
	"context"
	"time"

	"hirevision-backend/internal/tasks"
)

// MemoryRepo stores resume builds in memory and is safe for concurrent use.
type MemoryRepo struct {
	store *tasks.MemoryStore[ResumeBuild]
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: tasks.NewMemoryStore[ResumeBuild]()}
}

func (r *MemoryRepo) Create(ctx context.Context, build ResumeBuild) error {
	return r.store.Put(ctx, build)
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (ResumeBuild, error) {
	return r.store.Get(ctx, id)
}

// ListByUser returns a user's builds, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeBuild, error) {
	return r.store.ListByUser(ctx, userID, limit, offset)
}

func (r *MemoryRepo) UpdateState(ctx context.Context, id string, state tasks.State, result *Result, latexKey string) error {
	return r.store.Update(ctx, id, func(b *ResumeBuild) {
		b.State = state
		if result != nil {
			res := *result
			b.Result = &res
		}
		if latexKey != "" {
			b.LatexKey = latexKey
		}
		b.UpdatedAt = time.Now().UTC()
	})
}

var _ Repo = (*MemoryRepo)(nil)
