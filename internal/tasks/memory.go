package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Record is a job record the memory store can index.
type Record interface {
	RecordID() string
	OwnerID() string
	Created() time.Time
}

// MemoryStore keeps records in memory and is safe for concurrent use. Domain
// repositories embed it for tests and single-process runs.
type MemoryStore[T Record] struct {
	mu     sync.RWMutex
	byID   map[string]T
	byUser map[string][]string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore[T Record]() *MemoryStore[T] {
	return &MemoryStore[T]{
		byID:   make(map[string]T),
		byUser: make(map[string][]string),
	}
}

// Put inserts rec. IDs must be unique.
func (s *MemoryStore[T]) Put(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.RecordID()]; exists {
		return fmt.Errorf("record %s already exists", rec.RecordID())
	}
	s.byID[rec.RecordID()] = rec
	s.byUser[rec.OwnerID()] = append(s.byUser[rec.OwnerID()], rec.RecordID())
	return nil
}

// Get returns the record with id or ErrNotFound.
func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return zero, ErrNotFound
	}
	return rec, nil
}

// Update applies fn to the stored record under the write lock.
func (s *MemoryStore[T]) Update(ctx context.Context, id string, fn func(*T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(&rec)
	s.byID[id] = rec
	return nil
}

// ListByUser returns a user's records newest first, with limit/offset.
// A non-positive limit returns everything after offset.
func (s *MemoryStore[T]) ListByUser(ctx context.Context, userID string, limit, offset int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	ids := s.byUser[userID]
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	s.mu.RUnlock()

	if offset >= len(out) {
		return []T{}, nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created().After(out[j].Created())
	})
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}
