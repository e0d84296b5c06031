// Package tasks holds the lifecycle shared by every background job record.
package tasks

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// Status is the lifecycle state of a job record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Kind names a job type on the queue.
type Kind string

const (
	KindResumeAnalysis Kind = "resume_analysis"
	KindLearningPath   Kind = "learning_path"
	KindResumeBuild    Kind = "resume_build"
)

// State is the lifecycle bookkeeping embedded in each job record.
type State struct {
	TaskStatus  Status     `json:"taskStatus"`
	TaskError   string     `json:"taskError,omitempty"`
	ErrorCode   string     `json:"errorCode,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Transition applies status to the state, stamping start and completion times.
func (s *State) Transition(status Status, code, message string, now time.Time) {
	s.TaskStatus = status
	switch status {
	case StatusRunning:
		if s.StartedAt == nil {
			t := now
			s.StartedAt = &t
		}
		s.TaskError = ""
		s.ErrorCode = ""
	case StatusCompleted, StatusFailed:
		if s.CompletedAt == nil {
			t := now
			s.CompletedAt = &t
		}
		s.ErrorCode = code
		s.TaskError = SanitizeError(message)
	}
}

const maxErrorLen = 500

// SanitizeError flattens msg to one line of at most 500 bytes.
func SanitizeError(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}
