package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
)

func TestInlineClientRequiresHandler(t *testing.T) {
	c := NewInlineClient(telemetry.Nop())
	if err := c.Send(context.Background(), Message{}); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
}

func TestInlineClientDeliversDetached(t *testing.T) {
	c := NewInlineClient(telemetry.Nop())
	var (
		mu        sync.Mutex
		got       []Message
		requestID string
		ctxErr    error
	)
	c.Bind(HandlerFunc(func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		requestID = requestid.From(ctx)
		ctxErr = ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(requestid.With(context.Background(), "req-1"))
	msg := NewMessage(tasks.KindResumeBuild, "rb-1", "req-1", time.Now())
	if err := c.Send(ctx, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	cancel()
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].RecordID != "rb-1" {
		t.Fatalf("unexpected deliveries %+v", got)
	}
	if requestID != "req-1" {
		t.Fatalf("request id not carried, got %q", requestID)
	}
	if ctxErr != nil {
		t.Fatalf("handler context should not inherit cancellation: %v", ctxErr)
	}
}
