package resumebuilds

import (
	"time"

	"hirevision-backend/internal/tasks"
)

// ResumeBuild is a persisted resume generation job. The generated LaTeX
// lives in the object store under LatexKey.
type ResumeBuild struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Input  Input  `json:"input"`
	tasks.State
	LatexKey  string    `json:"latexKey,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b ResumeBuild) RecordID() string   { return b.ID }
func (b ResumeBuild) OwnerID() string    { return b.UserID }
func (b ResumeBuild) Created() time.Time { return b.CreatedAt }
