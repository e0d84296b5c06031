// Package workerproc turns queue payloads into calls on the domain service
// that owns the record.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/tasks"
)

// Processor runs the job stored under a record ID.
type Processor interface {
	Process(ctx context.Context, id string) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, id string) error

func (f ProcessorFunc) Process(ctx context.Context, id string) error { return f(ctx, id) }

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingRecordID indicates a message without a record id.
type ErrMissingRecordID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingRecordID) Error() string { return "missing record id" }

// ErrUnknownKind indicates a message no processor is registered for.
type ErrUnknownKind struct {
	Kind tasks.Kind
}

func (e ErrUnknownKind) Error() string { return fmt.Sprintf("unknown message kind %q", e.Kind) }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	Kind      tasks.Kind
	RecordID  string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process " + string(e.Kind)
	}
	return "process " + string(e.Kind) + ": " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.RecordID) == "" {
		return msg, meta, ErrMissingRecordID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Permanent reports whether redelivering the message can never succeed:
// the payload is unreadable, the kind is unknown or the record is gone.
func Permanent(err error) bool {
	if err == nil {
		return false
	}
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingRecordID
		unknown ErrUnknownKind
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &missing), errors.As(err, &unknown):
		return true
	case errors.Is(err, tasks.ErrNotFound):
		return true
	default:
		return false
	}
}

// Dispatcher routes messages to the processor registered for their kind. It
// implements queue.Handler so the inline queue can deliver to it directly.
type Dispatcher struct {
	mu         sync.RWMutex
	processors map[tasks.Kind]Processor
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{processors: make(map[tasks.Kind]Processor)}
}

// Register sets the processor for kind, replacing any earlier one.
func (d *Dispatcher) Register(kind tasks.Kind, p Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processors[kind] = p
}

// Handle runs msg with the request ID carried on the message.
func (d *Dispatcher) Handle(ctx context.Context, msg queue.Message) error {
	if strings.TrimSpace(msg.RecordID) == "" {
		return ErrMissingRecordID{RequestID: msg.RequestID}
	}
	d.mu.RLock()
	p, ok := d.processors[msg.Kind]
	d.mu.RUnlock()
	if !ok {
		return ErrUnknownKind{Kind: msg.Kind}
	}

	if msg.RequestID != "" {
		ctx = requestid.With(ctx, msg.RequestID)
	}
	if err := p.Process(ctx, msg.RecordID); err != nil {
		return ErrProcess{Kind: msg.Kind, RecordID: msg.RecordID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// HandleBody parses a raw payload and handles it.
func (d *Dispatcher) HandleBody(ctx context.Context, body string) (queue.Message, error) {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return msg, err
	}
	return msg, d.Handle(ctx, msg)
}

var _ queue.Handler = (*Dispatcher)(nil)
