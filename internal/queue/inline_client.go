package queue

import (
	"context"
	"errors"
	"sync"

	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/telemetry"
)

// ErrNoHandler is returned by InlineClient.Send before Bind is called.
var ErrNoHandler = errors.New("inline queue has no handler")

// InlineClient runs each message in a goroutine of the sending process. It is
// used for local development where no SQS queue exists. Failed messages are
// logged and dropped.
type InlineClient struct {
	mu      sync.RWMutex
	handler Handler
	log     telemetry.Logger
	wg      sync.WaitGroup
}

// NewInlineClient constructs an InlineClient; call Bind before Send.
func NewInlineClient(log telemetry.Logger) *InlineClient {
	return &InlineClient{log: telemetry.OrDefault(log)}
}

// Bind sets the handler messages are delivered to.
func (c *InlineClient) Bind(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Send schedules msg. The handler runs with a context detached from ctx that
// keeps only the request ID.
func (c *InlineClient) Send(ctx context.Context, msg Message) error {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		return ErrNoHandler
	}
	bg := requestid.Detach(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := h.Handle(bg, msg); err != nil {
			c.log.Error("queue.inline_failed", map[string]any{
				"kind":       string(msg.Kind),
				"record_id":  msg.RecordID,
				"request_id": msg.RequestID,
				"error":      err.Error(),
			})
		}
	}()
	return nil
}

// Wait blocks until every scheduled message has been handled.
func (c *InlineClient) Wait() {
	c.wg.Wait()
}
