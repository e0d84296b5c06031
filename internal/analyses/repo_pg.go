package analyses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hirevision-backend/internal/shared/storage/db"
	"hirevision-backend/internal/tasks"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, job_description, file_name, file_size, storage_key,
       task_status, task_error, error_code, result, started_at, completed_at, created_at, updated_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, job_description, file_name, file_size, storage_key, task_status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	updatedAt := analysis.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = analysis.CreatedAt
	}
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.JobDescription,
		analysis.FileName,
		analysis.FileSize,
		analysis.StorageKey,
		string(analysis.TaskStatus),
		analysis.CreatedAt,
		updatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1 LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

// ListByUser returns a user's analyses, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, pageLimit(limit), max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateState writes task state and, when result is non-nil, the result.
func (r *PGRepo) UpdateState(ctx context.Context, analysisID string, state tasks.State, result *Result) error {
	var payload any
	if result != nil {
		var err error
		if payload, err = db.JSONB(result); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	const query = `
UPDATE analyses
SET task_status = $2,
    task_error = $3,
    error_code = $4,
    started_at = $5,
    completed_at = $6,
    result = COALESCE($7, result),
    updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		analysisID,
		string(state.TaskStatus),
		state.TaskError,
		state.ErrorCode,
		db.NullTime(state.StartedAt),
		db.NullTime(state.CompletedAt),
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnalysis(row db.RowScanner) (Analysis, error) {
	var (
		a           Analysis
		status      string
		taskError   sql.NullString
		errorCode   sql.NullString
		result      []byte
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.JobDescription,
		&a.FileName,
		&a.FileSize,
		&a.StorageKey,
		&status,
		&taskError,
		&errorCode,
		&result,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Analysis{}, err
	}
	a.TaskStatus = tasks.Status(status)
	a.TaskError = taskError.String
	a.ErrorCode = errorCode.String
	a.StartedAt = db.TimePtr(startedAt)
	a.CompletedAt = db.TimePtr(completedAt)
	var res Result
	ok, err := db.ScanJSON(result, &res)
	if err != nil {
		return Analysis{}, fmt.Errorf("decode result for %s: %w", a.ID, err)
	}
	if ok {
		a.Result = &res
	}
	return a, nil
}

const defaultPageSize = 20

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return limit
}
