package resumebuilds

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

const buildColumns = `id, user_id, name, input, task_status, task_error, error_code,
       result, latex_key, started_at, completed_at, created_at, updated_at`

// Create inserts a resume build.
func (r *PGRepo) Create(ctx context.Context, build ResumeBuild) error {
	input, err := db.JSONB(build.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	const query = `
INSERT INTO resume_builds (id, user_id, name, input, task_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	updatedAt := build.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = build.CreatedAt
	}
	_, err = r.DB.ExecContext(ctx, query,
		build.ID,
		build.UserID,
		build.Name,
		input,
		string(build.TaskStatus),
		build.CreatedAt,
		updatedAt,
	)
	return err
}

// GetByID returns a resume build by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (ResumeBuild, error) {
	query := `SELECT ` + buildColumns + ` FROM resume_builds WHERE id = $1 LIMIT 1`
	build, err := scanBuild(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ResumeBuild{}, ErrNotFound
	}
	return build, err
}

// ListByUser lists resume builds ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeBuild, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + buildColumns + ` FROM resume_builds WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ResumeBuild{}
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, build)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateState(ctx context.Context, id string, state tasks.State, result *Result, latexKey string) error {
	var payload any
	if result != nil {
		var err error
		if payload, err = db.JSONB(result); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	const query = `
UPDATE resume_builds
SET task_status = $2,
    task_error = $3,
    error_code = $4,
    started_at = $5,
    completed_at = $6,
    result = COALESCE($7, result),
    latex_key = COALESCE(NULLIF($8, ''), latex_key),
    updated_at = $9
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		id,
		string(state.TaskStatus),
		state.TaskError,
		state.ErrorCode,
		db.NullTime(state.StartedAt),
		db.NullTime(state.CompletedAt),
		payload,
		latexKey,
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

func scanBuild(row db.RowScanner) (ResumeBuild, error) {
	var (
		b           ResumeBuild
		input       []byte
		status      string
		taskError   sql.NullString
		errorCode   sql.NullString
		result      []byte
		latexKey    sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&b.ID, &b.UserID, &b.Name, &input,
		&status, &taskError, &errorCode, &result, &latexKey,
		&startedAt, &completedAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return ResumeBuild{}, err
	}
	b.TaskStatus = tasks.Status(status)
	b.TaskError = taskError.String
	b.ErrorCode = errorCode.String
	b.LatexKey = latexKey.String
	b.StartedAt = db.TimePtr(startedAt)
	b.CompletedAt = db.TimePtr(completedAt)
	if _, err := db.ScanJSON(input, &b.Input); err != nil {
		return ResumeBuild{}, fmt.Errorf("decode input for %s: %w", b.ID, err)
	}
	var res Result
	ok, err := db.ScanJSON(result, &res)
	if err != nil {
		return ResumeBuild{}, fmt.Errorf("decode result for %s: %w", b.ID, err)
	}
	if ok {
		b.Result = &res
	}
	return b, nil
}

var _ Repo = (*PGRepo)(nil)
