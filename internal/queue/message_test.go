package queue

import (
	"reflect"
	"testing"
	"time"

	"hirevision-backend/internal/tasks"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewMessage(tasks.KindLearningPath, "lp-123", "request-456", time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC))
	if msg.EnqueuedAt != "2026-01-30T22:00:00Z" || msg.Version != MessageVersion {
		t.Fatalf("unexpected message %+v", msg)
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestDecodeLegacyAnalysisMessage(t *testing.T) {
	got, err := DecodeMessage([]byte(`{"analysisId":"a-1","requestId":"r-1","version":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != tasks.KindResumeAnalysis || got.RecordID != "a-1" || got.RequestID != "r-1" {
		t.Fatalf("unexpected legacy decode %+v", got)
	}
}

func TestDecodeInvalidPayload(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{`)); err == nil {
		t.Fatalf("expected error")
	}
}
