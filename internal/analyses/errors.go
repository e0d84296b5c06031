package analyses

import (
	"errors"

	"hirevision-backend/internal/tasks"
)

var (
	ErrNotFound = tasks.ErrNotFound
	// ErrDispatch means the record was created but the job could not be queued.
	ErrDispatch = errors.New("could not schedule analysis")
)

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)
