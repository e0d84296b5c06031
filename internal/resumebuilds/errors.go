package resumebuilds

import (
	"errors"

	"hirevision-backend/internal/tasks"
)

var (
	// ErrNotFound indicates a build does not exist or belongs to another user.
	ErrNotFound = tasks.ErrNotFound

	// ErrNotReady is returned when LaTeX is requested before the build completed.
	ErrNotReady = errors.New("resume build not ready")

	// ErrDispatch means the record was created but the job could not be queued.
	ErrDispatch = errors.New("could not schedule resume build")
)

// ErrorCodeStorage marks builds whose LaTeX could not be written.
const ErrorCodeStorage = "STORAGE_ERROR"
