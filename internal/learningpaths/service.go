package learningpaths

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/requestid"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
)

// Service owns learning path records.
type Service struct {
	Repo     Repo
	Queue    queue.Client
	Planner  *Planner
	DemoMode bool
	Deadline time.Duration
	Log      telemetry.Logger
	Now      func() time.Time
}

// Create validates the request, stores a pending record and queues it.
func (s *Service) Create(ctx context.Context, userID string, in Input) (LearningPath, error) {
	if userID == "" {
		return LearningPath{}, errors.New("userID is required")
	}
	if err := in.Validate(); err != nil {
		return LearningPath{}, err
	}

	now := s.now()
	path := LearningPath{
		ID:            uuid.NewString(),
		UserID:        userID,
		CurrentSkills: in.CurrentSkills,
		DreamRole:     in.DreamRole,
		State:         tasks.State{TaskStatus: tasks.StatusPending},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, path); err != nil {
		return LearningPath{}, err
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindLearningPath, path.ID, "", path.State)

	if err := s.Queue.Send(ctx, queue.NewMessage(tasks.KindLearningPath, path.ID, requestid.From(ctx), now)); err != nil {
		path.State.Transition(tasks.StatusFailed, pipeline.CodeInternal, "could not schedule learning path", s.now())
		if updateErr := s.Repo.UpdateState(ctx, path.ID, path.State, nil); updateErr != nil {
			telemetry.OrDefault(s.Log).Error("learning_path.dispatch_update_failed", map[string]any{"path_id": path.ID, "error": updateErr.Error()})
		}
		return path, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return path, nil
}

// Get returns the caller's learning path.
func (s *Service) Get(ctx context.Context, userID, id string) (LearningPath, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return LearningPath{}, err
	}
	if p.UserID != userID {
		return LearningPath{}, ErrNotFound
	}
	return p, nil
}

// List returns a user's learning paths, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]LearningPath, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Process runs the planner for a queued record.
func (s *Service) Process(ctx context.Context, id string) error {
	path, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.OrDefault(s.Log).Error("learning_path.not_found", map[string]any{"path_id": id})
		}
		return fmt.Errorf("learning path lookup: %w", err)
	}
	if path.TaskStatus.Terminal() {
		return nil
	}

	state := path.State
	from := state.TaskStatus
	state.Transition(tasks.StatusRunning, "", "", s.now())
	if err := s.Repo.UpdateState(ctx, id, state, nil); err != nil {
		return fmt.Errorf("set running: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindLearningPath, id, from, state)

	runCtx, cancel := tasks.DeadlineContext(ctx, s.Deadline)
	result := s.Planner.Plan(runCtx, Input{CurrentSkills: path.CurrentSkills, DreamRole: path.DreamRole})
	cancel()
	if result.Outcome == pipeline.OutcomeNotConfigured && s.DemoMode {
		result = DemoResult()
	}

	if result.Outcome.Failed() {
		state.Transition(tasks.StatusFailed, result.ErrorCode, result.Message, s.now())
	} else {
		state.Transition(tasks.StatusCompleted, "", "", s.now())
	}
	if err := s.Repo.UpdateState(ctx, id, state, &result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	tasks.LogStatus(ctx, s.Log, tasks.KindLearningPath, id, tasks.StatusRunning, state)
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
