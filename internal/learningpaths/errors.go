package learningpaths

import (
	"errors"

	"hirevision-backend/internal/tasks"
)

var (
	ErrNotFound = tasks.ErrNotFound
	// ErrDispatch means the record was created but the job could not be queued.
	ErrDispatch = errors.New("could not schedule learning path")
)
