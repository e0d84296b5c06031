package learningpaths

import (
	"time"

	"hirevision-backend/internal/tasks"
)

// LearningPath is a persisted learning path job.
type LearningPath struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	CurrentSkills string `json:"currentSkills"`
	DreamRole     string `json:"dreamRole"`
	tasks.State
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p LearningPath) RecordID() string   { return p.ID }
func (p LearningPath) OwnerID() string    { return p.UserID }
func (p LearningPath) Created() time.Time { return p.CreatedAt }
