package resumebuilds

import (
	"context"
	"fmt"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/shared/telemetry"
)

// Domain labels logs and metrics for this pipeline.
const Domain = "resume_build"

const incompleteMessage = "The AI response did not contain a complete LaTeX document. Please try again."

// Builder turns structured candidate data into a LaTeX resume.
type Builder struct {
	Runner *pipeline.Runner
	Policy pipeline.MalformedPolicy
	Log    telemetry.Logger
}

// Build runs the pipeline and always returns a Result.
func (b *Builder) Build(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	var failure *pipeline.Failure
	defer func() {
		if rec := recover(); rec != nil {
			failure = pipeline.RecoveredFailure(b.Log, Domain, rec)
			res = errorResult(failure)
		}
		pipeline.Report(b.Log, Domain, res.Outcome, start, failure)
	}()

	res, err := b.build(ctx, in)
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

func (b *Builder) build(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, pipeline.Fail(pipeline.OutcomeInputError, err.Error())
	}
	messages, err := BuildPrompt(in)
	if err != nil {
		return Result{}, err
	}
	reply, err := b.Runner.Complete(ctx, Domain, llm.Request{Messages: messages})
	if err != nil {
		return Result{}, err
	}

	extraction, err := pipeline.Extract(reply, b.Policy)
	if err != nil {
		return Result{}, err
	}
	if extraction == nil {
		res := FallbackResult(reply)
		if !ValidLatex(res.LatexContent) {
			return Result{}, pipeline.Fail(pipeline.OutcomeInvalidStructure, incompleteMessage)
		}
		return res, nil
	}
	if !Validate(extraction.Fields) {
		return Result{}, pipeline.Fail(pipeline.OutcomeInvalidStructure, incompleteMessage)
	}
	return Decode(extraction.Raw)
}

// Summary is a one-line description used in logs and the CLI.
func (r Result) Summary() string {
	if r.Outcome.Failed() {
		return fmt.Sprintf("%s: %s", r.Outcome, r.Message)
	}
	return fmt.Sprintf("%s: %d words of LaTeX", r.Outcome, r.WordCount)
}
