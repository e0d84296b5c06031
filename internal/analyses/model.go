package analyses

import (
	"time"

	"hirevision-backend/internal/tasks"
)

// Analysis is a persisted resume analysis job.
type Analysis struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	JobDescription string `json:"jobDescription"`
	FileName       string `json:"fileName"`
	FileSize       int64  `json:"fileSize"`
	StorageKey     string `json:"-"`
	tasks.State
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a Analysis) RecordID() string   { return a.ID }
func (a Analysis) OwnerID() string    { return a.UserID }
func (a Analysis) Created() time.Time { return a.CreatedAt }
