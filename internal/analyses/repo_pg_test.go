package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/tasks"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	analysis := Analysis{
		ID:             "analysis-1",
		UserID:         "user-1",
		JobDescription: "jd",
		FileName:       "resume.pdf",
		FileSize:       1024,
		StorageKey:     "uploads/x/analysis-1/resume.pdf",
		State:          tasks.State{TaskStatus: tasks.StatusPending},
		CreatedAt:      now,
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.UserID,
			analysis.JobDescription,
			analysis.FileName,
			analysis.FileSize,
			analysis.StorageKey,
			"pending",
			now,
			now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStateWritesResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	state := tasks.State{TaskStatus: tasks.StatusCompleted, StartedAt: &now, CompletedAt: &now}
	res := DemoResult()

	mock.ExpectExec("UPDATE analyses").
		WithArgs("analysis-1", "completed", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateState(context.Background(), "analysis-1", state, &res); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStateWithoutResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	state := tasks.State{TaskStatus: tasks.StatusRunning}

	mock.ExpectExec("UPDATE analyses").
		WithArgs("analysis-1", "running", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateState(context.Background(), "analysis-1", state, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "job_description", "file_name", "file_size", "storage_key",
		"task_status", "task_error", "error_code", "result", "started_at", "completed_at", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id = \\$1").
		WithArgs("analysis-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"analysis-1", "user-1", "jd", "resume.pdf", int64(10), "key",
			"failed", "boom", pipeline.CodeInternal, []byte(`{"outcome":"unexpected_error","ats_score":"Error"}`),
			now, now, now, now,
		))

	a, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.TaskStatus != tasks.StatusFailed || a.ErrorCode != pipeline.CodeInternal || a.Result == nil {
		t.Fatalf("unexpected analysis %+v", a)
	}
	if a.Result.ATSScore.Label != "Error" {
		t.Fatalf("expected Error label, got %+v", a.Result.ATSScore)
	}

	mock.ExpectQuery("SELECT (.+) FROM analyses WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserDefaultsPage(t *testing.T) {
	repo, mock := newMockRepo(t)
	cols := []string{"id", "user_id", "job_description", "file_name", "file_size", "storage_key",
		"task_status", "task_error", "error_code", "result", "started_at", "completed_at", "created_at", "updated_at"}

	mock.ExpectQuery("FROM analyses WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1", defaultPageSize, 0).
		WillReturnRows(sqlmock.NewRows(cols))

	items, err := repo.ListByUser(context.Background(), "user-1", 0, -5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty slice, got %v", items)
	}
}
