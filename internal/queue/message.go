package queue

import (
	"encoding/json"
	"time"

	"hirevision-backend/internal/tasks"
)

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message asks a worker to run the job stored under RecordID.
type Message struct {
	Kind       tasks.Kind `json:"kind"`
	RecordID   string     `json:"recordId"`
	RequestID  string     `json:"requestId"`
	EnqueuedAt string     `json:"enqueuedAt"`
	Version    int        `json:"version"`
}

// NewMessage builds a message for the record, stamped at now.
func NewMessage(kind tasks.Kind, recordID, requestID string, now time.Time) Message {
	return Message{
		Kind:       kind,
		RecordID:   recordID,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. Version 0 payloads
// predate the kind field and carried only resume analyses under analysisId.
func DecodeMessage(payload []byte) (Message, error) {
	var wire struct {
		Message
		AnalysisID string `json:"analysisId"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Message{}, err
	}
	msg := wire.Message
	if msg.RecordID == "" && wire.AnalysisID != "" {
		msg.RecordID = wire.AnalysisID
		if msg.Kind == "" {
			msg.Kind = tasks.KindResumeAnalysis
		}
	}
	return msg, nil
}
