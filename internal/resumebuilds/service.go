package resumebuilds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/storage/object"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
)

const latexContentType = "application/x-tex"

// Service contains business logic for resume builds.
type Service struct {
	Repo     Repo
	Store    object.Store
	Queue    queue.Client
	Builder  *Builder
	DemoMode bool
	Deadline time.Duration
	Log      telemetry.Logger
	Now      func() time.Time
}

// Create validates the candidate data, stores a pending build and queues it.
func (s *Service) Create(ctx context.Context, userID string, in Input) (ResumeBuild, error) {
	if userID == "" {
		return ResumeBuild{}, errors.New("userID is required")
	}
	if err := in.Validate(); err != nil {
		return ResumeBuild{}, err
	}

	now := s.now()
	build := ResumeBuild{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.ContactInfo.Name),
		Input:     in,
		State:     tasks.State{TaskStatus: tasks.StatusPending},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, build); err != nil {
		return ResumeBuild{}, err
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeBuild, build.ID, "", build.State)

	if err := s.Queue.Send(ctx, queue.NewMessage(tasks.KindResumeBuild, build.ID, requestid.From(ctx), now)); err != nil {
		build.State.Transition(tasks.StatusFailed, pipeline.CodeInternal, "could not schedule resume build", s.now())
		if updateErr := s.Repo.UpdateState(ctx, build.ID, build.State, nil, ""); updateErr != nil {
			telemetry.OrDefault(s.Log).Error("resume_build.dispatch_update_failed", map[string]any{"build_id": build.ID, "error": updateErr.Error()})
		}
		return build, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return build, nil
}

// Get returns the caller's resume build.
func (s *Service) Get(ctx context.Context, userID, id string) (ResumeBuild, error) {
	if userID == "" || id == "" {
		return ResumeBuild{}, ErrNotFound
	}
	build, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return ResumeBuild{}, err
	}
	if build.UserID != userID {
		return ResumeBuild{}, ErrNotFound
	}
	return build, nil
}

// List returns resume builds for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]ResumeBuild, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// OpenLatex opens the generated document of a completed build.
func (s *Service) OpenLatex(ctx context.Context, userID, id string) (ResumeBuild, io.ReadCloser, error) {
	build, err := s.Get(ctx, userID, id)
	if err != nil {
		return ResumeBuild{}, nil, err
	}
	if build.LatexKey == "" {
		return build, nil, ErrNotReady
	}
	rc, err := s.Store.Open(ctx, build.LatexKey)
	if err != nil {
		return build, nil, fmt.Errorf("open latex: %w", err)
	}
	return build, rc, nil
}

// Process runs the builder for a queued record and stores the LaTeX.
func (s *Service) Process(ctx context.Context, id string) error {
	build, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.OrDefault(s.Log).Error("resume_build.not_found", map[string]any{"build_id": id})
		}
		return fmt.Errorf("resume build lookup: %w", err)
	}
	if build.TaskStatus.Terminal() {
		return nil
	}

	state := build.State
	from := state.TaskStatus
	state.Transition(tasks.StatusRunning, "", "", s.now())
	if err := s.Repo.UpdateState(ctx, id, state, nil, ""); err != nil {
		return fmt.Errorf("set running: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeBuild, id, from, state)

	runCtx, cancel := tasks.DeadlineContext(ctx, s.Deadline)
	result := s.Builder.Build(runCtx, build.Input)
	cancel()
	if result.Outcome == pipeline.OutcomeNotConfigured && s.DemoMode {
		result = DemoResult()
	}

	var latexKey string
	if !result.Outcome.Failed() {
		latexKey = object.ResumeBuildKey(id)
		if _, err := s.Store.Put(ctx, latexKey, latexContentType, strings.NewReader(result.LatexContent)); err != nil {
			telemetry.OrDefault(s.Log).Error("resume_build.store_failed", map[string]any{"build_id": id, "error": err.Error()})
			latexKey = ""
			result = ErrorResult(pipeline.OutcomeUnexpectedError, "The generated resume could not be saved. Please try again.")
			result.ErrorCode = ErrorCodeStorage
		}
	}
	result.LatexContent = ""

	if result.Outcome.Failed() {
		state.Transition(tasks.StatusFailed, result.ErrorCode, result.Message, s.now())
	} else {
		state.Transition(tasks.StatusCompleted, "", "", s.now())
	}
	if err := s.Repo.UpdateState(ctx, id, state, &result, latexKey); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindResumeBuild, id, tasks.StatusRunning, state)
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
