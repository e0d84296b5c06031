package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/storage/object"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
)

// Service owns analysis records: it accepts uploads, queues the work and
// runs the analyzer when a worker picks the job up.
type Service struct {
	Repo     Repo
	Store    object.Store
	Queue    queue.Client
	Analyzer *Analyzer
	// DemoMode stores DemoResult when no provider is configured.
	DemoMode bool
	// Deadline bounds a whole Process call.
	Deadline time.Duration
	Log      telemetry.Logger
	Now      func() time.Time
}

// CreateInput is a new analysis request.
type CreateInput struct {
	UserID         string
	FileName       string
	Size           int64
	Body           io.Reader
	JobDescription string
}

// Create validates the upload, stores the file, creates a pending record and
// queues it.
func (s *Service) Create(ctx context.Context, in CreateInput) (Analysis, error) {
	if in.UserID == "" {
		return Analysis{}, errors.New("userID is required")
	}
	limits := s.limits()
	if err := limits.ValidateUpload(in.FileName, in.Size); err != nil {
		return Analysis{}, err
	}
	if err := limits.ValidateJobDescription(in.JobDescription); err != nil {
		return Analysis{}, err
	}

	id := uuid.NewString()
	key, err := object.UploadKey(in.UserID, id, in.FileName)
	if err != nil {
		return Analysis{}, invalid("Invalid file name.")
	}
	size, err := s.Store.Put(ctx, key, contentTypeFor(in.FileName), io.LimitReader(in.Body, limits.MaxFileBytes+1))
	if err != nil {
		return Analysis{}, fmt.Errorf("store upload: %w", err)
	}
	if size > limits.MaxFileBytes {
		s.discardUpload(ctx, key)
		return Analysis{}, invalid("File is too large. Maximum size is %d MB.", limits.MaxFileBytes>>20)
	}

	now := s.now()
	analysis := Analysis{
		ID:             id,
		UserID:         in.UserID,
		JobDescription: in.JobDescription,
		FileName:       in.FileName,
		FileSize:       size,
		StorageKey:     key,
		State:          tasks.State{TaskStatus: tasks.StatusPending},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		s.discardUpload(ctx, key)
		return Analysis{}, err
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeAnalysis, id, "", analysis.State)

	msg := queue.NewMessage(tasks.KindResumeAnalysis, id, requestid.From(ctx), now)
	if err := s.Queue.Send(ctx, msg); err != nil {
		analysis.State.Transition(tasks.StatusFailed, pipeline.CodeInternal, "could not schedule analysis", s.now())
		if updateErr := s.Repo.UpdateState(ctx, id, analysis.State, nil); updateErr != nil {
			telemetry.OrDefault(s.Log).Error("analysis.dispatch_update_failed", map[string]any{"analysis_id": id, "error": updateErr.Error()})
		}
		return analysis, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return analysis, nil
}

// Get returns the caller's analysis. Records owned by someone else are reported as not found.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns analyses for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Process runs the analysis for a queued record. Redelivered messages for
// finished records are ignored. Only infrastructure failures are returned;
// analysis failures are stored on the record.
func (s *Service) Process(ctx context.Context, analysisID string) error {
	log := telemetry.OrDefault(s.Log)
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Error("analysis.not_found", map[string]any{"analysis_id": analysisID})
		}
		return fmt.Errorf("analysis lookup: %w", err)
	}
	if analysis.TaskStatus.Terminal() {
		return nil
	}

	state := analysis.State
	from := state.TaskStatus
	state.Transition(tasks.StatusRunning, "", "", s.now())
	if err := s.Repo.UpdateState(ctx, analysisID, state, nil); err != nil {
		return fmt.Errorf("set running: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeAnalysis, analysisID, from, state)

	result := s.run(ctx, analysis)

	if result.Outcome.Failed() {
		state.Transition(tasks.StatusFailed, result.ErrorCode, result.Message, s.now())
	} else {
		state.Transition(tasks.StatusCompleted, "", "", s.now())
	}
	if err := s.Repo.UpdateState(ctx, analysisID, state, &result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeAnalysis, analysisID, tasks.StatusRunning, state)
	return nil
}

func (s *Service) run(ctx context.Context, analysis Analysis) Result {
	data, err := s.load(ctx, analysis.StorageKey)
	if err != nil {
		res := ErrorResult(pipeline.OutcomeUnexpectedError, "The uploaded file could not be read. Please upload it again.")
		res.ErrorCode = ErrorCodeStorage
		telemetry.OrDefault(s.Log).Error("analysis.load_failed", map[string]any{"analysis_id": analysis.ID, "error": err.Error()})
		return res
	}

	runCtx, cancel := tasks.DeadlineContext(ctx, s.Deadline)
	defer cancel()
	result := s.Analyzer.Analyze(runCtx, Input{
		File:           &Upload{FileName: analysis.FileName, Size: int64(len(data)), Data: data},
		JobDescription: analysis.JobDescription,
	})
	if result.Outcome == pipeline.OutcomeNotConfigured && s.DemoMode {
		telemetry.OrDefault(s.Log).Info("analysis.demo", map[string]any{"analysis_id": analysis.ID})
		return DemoResult()
	}
	return result
}

func (s *Service) load(ctx context.Context, key string) ([]byte, error) {
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(body, s.limits().MaxFileBytes+1)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// discardUpload removes a stored upload that no record will point at.
func (s *Service) discardUpload(ctx context.Context, key string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
		telemetry.OrDefault(s.Log).Error("analysis.upload_cleanup_failed", map[string]any{"storage_key": key, "error": err.Error()})
	}
}

func (s *Service) limits() Limits {
	if s.Analyzer != nil {
		return s.Analyzer.limits()
	}
	return DefaultLimits()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func contentTypeFor(fileName string) string {
	switch extOf(fileName) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	default:
		return "application/octet-stream"
	}
}
