package learningpaths

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/shared/telemetry"
)

// Domain labels logs and metrics for this pipeline.
const Domain = "learning_path"

// minInputLen is the shortest accepted skills or role description, after trimming.
const minInputLen = 10

// Input is one learning path request.
type Input struct {
	CurrentSkills string `json:"current_skills"`
	DreamRole     string `json:"dream_role"`
}

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks that both fields are present and descriptive enough.
func (in Input) Validate() error {
	skills := strings.TrimSpace(in.CurrentSkills)
	role := strings.TrimSpace(in.DreamRole)
	switch {
	case skills == "" || role == "":
		return &ValidationError{Message: "Please provide both your current skills and dream role."}
	case len([]rune(skills)) < minInputLen:
		return &ValidationError{Message: "Please provide more detailed information about your current skills and experience."}
	case len([]rune(role)) < minInputLen:
		return &ValidationError{Message: "Please provide more detailed information about your dream role."}
	}
	return nil
}

// BuildPrompt sanitizes the inputs and renders the learning path conversation.
func BuildPrompt(in Input) ([]llm.Message, error) {
	return llm.BuildMessages(llm.PromptLearningPathSystem, llm.PromptLearningPath, map[string]string{
		"CURRENT_SKILLS": llm.Sanitize(in.CurrentSkills),
		"DREAM_ROLE":     llm.Sanitize(in.DreamRole),
	})
}

// Planner turns a skills description and a target role into a learning path.
type Planner struct {
	Runner *pipeline.Runner
	Policy pipeline.MalformedPolicy
	Log    telemetry.Logger
}

// Plan runs the pipeline and always returns a Result.
func (p *Planner) Plan(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	var failure *pipeline.Failure
	defer func() {
		if rec := recover(); rec != nil {
			failure = pipeline.RecoveredFailure(p.Log, Domain, rec)
			res = errorResult(failure)
		}
		pipeline.Report(p.Log, Domain, res.Outcome, start, failure)
	}()

	res, err := p.plan(ctx, in)
	if err != nil {
		failure = pipeline.AsFailure(err)
		return errorResult(failure)
	}
	return res
}

func errorResult(f *pipeline.Failure) Result {
	res := ErrorResult(f.Outcome, f.Message)
	res.ErrorCode = f.Outcome.Code(f.Category)
	return res
}

func (p *Planner) plan(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, pipeline.Fail(pipeline.OutcomeInputError, err.Error())
	}
	messages, err := BuildPrompt(in)
	if err != nil {
		return Result{}, err
	}
	reply, err := p.Runner.Complete(ctx, Domain, llm.Request{Messages: messages})
	if err != nil {
		return Result{}, err
	}

	extraction, err := pipeline.Extract(reply, p.Policy)
	if err != nil {
		return Result{}, err
	}
	if extraction == nil {
		return FallbackResult(reply), nil
	}
	if !Validate(extraction.Fields) {
		return Result{}, pipeline.Fail(pipeline.OutcomeInvalidStructure,
			"The AI response was missing parts of the learning path. Please try again.")
	}
	res, err := Decode(extraction.Raw)
	if err != nil {
		return Result{}, &pipeline.Failure{Outcome: pipeline.OutcomeInvalidStructure, Message: "The AI response could not be read. Please try again.", Err: err}
	}
	return res, nil
}

// Summary is a one-line description used in logs and the CLI.
func (r Result) Summary() string {
	if r.Outcome.Failed() {
		return fmt.Sprintf("%s: %s", r.Outcome, r.Message)
	}
	return fmt.Sprintf("%s: %d phases, %d skills to close", r.Outcome, len(r.LearningPath), len(r.SkillsGap))
}
