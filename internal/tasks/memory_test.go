package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

type rec struct {
	id, user string
	at       time.Time
	note     string
}

func (r rec) RecordID() string   { return r.id }
func (r rec) OwnerID() string    { return r.user }
func (r rec) Created() time.Time { return r.at }

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[rec]()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, rec{id: id, user: "u1", at: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	if err := s.Put(ctx, rec{id: "a", user: "u1"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, "b", func(r *rec) { r.note = "updated" }); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, "b")
	if got.note != "updated" {
		t.Fatalf("update not applied")
	}
	if err := s.Update(ctx, "missing", func(*rec) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	list, err := s.ListByUser(ctx, "u1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].id != "c" || list[1].id != "b" {
		t.Fatalf("unexpected order %+v", list)
	}
	list, _ = s.ListByUser(ctx, "u1", 0, 2)
	if len(list) != 1 || list[0].id != "a" {
		t.Fatalf("unexpected offset page %+v", list)
	}
	list, _ = s.ListByUser(ctx, "nobody", 10, 0)
	if len(list) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore[rec]()
	if err := s.Put(ctx, rec{id: "a"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
