package learningpaths

import (
	"context"
	"time"

	"hirevision-backend/internal/tasks"
)

// MemoryRepo stores learning paths in memory.
type MemoryRepo struct {
	store *tasks.MemoryStore[LearningPath]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: tasks.NewMemoryStore[LearningPath]()}
}

func (r *MemoryRepo) Create(ctx context.Context, path LearningPath) error {
	return r.store.Put(ctx, path)
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (LearningPath, error) {
	return r.store.Get(ctx, id)
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]LearningPath, error) {
	return r.store.ListByUser(ctx, userID, limit, offset)
}

func (r *MemoryRepo) UpdateState(ctx context.Context, id string, state tasks.State, result *Result) error {
	return r.store.Update(ctx, id, func(p *LearningPath) {
		p.State = state
		if result != nil {
			res := *result
			p.Result = &res
		}
		p.UpdatedAt = time.Now().UTC()
	})
}
