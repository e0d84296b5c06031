package learningpaths

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

const pathColumns = `id, user_id, current_skills, dream_role, task_status, task_error, error_code,
       result, started_at, completed_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, path LearningPath) error {
	const query = `
INSERT INTO learning_paths (id, user_id, current_skills, dream_role, task_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	updatedAt := path.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = path.CreatedAt
	}
	_, err := r.DB.ExecContext(ctx, query,
		path.ID, path.UserID, path.CurrentSkills, path.DreamRole,
		string(path.TaskStatus), path.CreatedAt, updatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (LearningPath, error) {
	query := `SELECT ` + pathColumns + ` FROM learning_paths WHERE id = $1 LIMIT 1`
	p, err := scanPath(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return LearningPath{}, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]LearningPath, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + pathColumns + ` FROM learning_paths WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LearningPath{}
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateState(ctx context.Context, id string, state tasks.State, result *Result) error {
	var payload any
	if result != nil {
		var err error
		if payload, err = db.JSONB(result); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	const query = `
UPDATE learning_paths
SET task_status = $2,
    task_error = $3,
    error_code = $4,
    started_at = $5,
    completed_at = $6,
    result = COALESCE($7, result),
    updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		id,
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

func scanPath(row db.RowScanner) (LearningPath, error) {
	var (
		p           LearningPath
		status      string
		taskError   sql.NullString
		errorCode   sql.NullString
		result      []byte
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &p.CurrentSkills, &p.DreamRole,
		&status, &taskError, &errorCode, &result,
		&startedAt, &completedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return LearningPath{}, err
	}
	p.TaskStatus = tasks.Status(status)
	p.TaskError = taskError.String
	p.ErrorCode = errorCode.String
	p.StartedAt = db.TimePtr(startedAt)
	p.CompletedAt = db.TimePtr(completedAt)
	var res Result
	ok, err := db.ScanJSON(result, &res)
	if err != nil {
		return LearningPath{}, fmt.Errorf("decode result for %s: %w", p.ID, err)
	}
	if ok {
		p.Result = &res
	}
	return p, nil
}
