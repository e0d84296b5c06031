package analyses

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"hirevision-backend/internal/extract"
	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/shared/telemetry"
)

// Domain labels logs and metrics for this pipeline.
const Domain = "resume_analysis"

// Upload is a resume file received from the user.
type Upload struct {
	FileName string
	Size     int64
	Data     []byte
}

// Input is one analysis request.
type Input struct {
	File           *Upload
	JobDescription string
}

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, fileName string, data []byte) (string, error)
}

// Limits bound what the analyzer accepts.
type Limits struct {
	MaxFileBytes      int64
	AllowedExtensions []string
	MinJobDescription int
	MaxJobDescription int
	MinResumeText     int
}

// DefaultLimits returns the limits used by the web form.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:      10 << 20,
		AllowedExtensions: []string{".pdf", ".docx", ".doc"},
		MinJobDescription: 10,
		MaxJobDescription: 10000,
		MinResumeText:     50,
	}
}

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidateUpload checks a file's name and size against the limits.
func (l Limits) ValidateUpload(fileName string, size int64) error {
	ext := extOf(fileName)
	allowed := false
	for _, a := range l.AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalid("File type %q is not supported. Please upload one of: %s.", ext, strings.Join(l.AllowedExtensions, ", "))
	}
	if size <= 0 {
		return invalid("The uploaded file is empty.")
	}
	if l.MaxFileBytes > 0 && size > l.MaxFileBytes {
		return invalid("File is too large. Maximum size is %d MB.", l.MaxFileBytes>>20)
	}
	return nil
}

func extOf(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// ValidateJobDescription checks the job description length.
func (l Limits) ValidateJobDescription(jd string) error {
	n := len([]rune(strings.TrimSpace(jd)))
	switch {
	case n == 0:
		return invalid("Please provide a job description.")
	case n < l.MinJobDescription:
		return invalid("Job description is too short. Please provide at least %d characters.", l.MinJobDescription)
	case l.MaxJobDescription > 0 && n > l.MaxJobDescription:
		return invalid("Job description is too long. Please keep it under %d characters.", l.MaxJobDescription)
	}
	return nil
}

// Analyzer scores a resume against a job description.
type Analyzer struct {
	Runner    *pipeline.Runner
	Extractor TextExtractor
	Policy    pipeline.MalformedPolicy
	Limits    Limits
	// ClassifyDocuments enables the "is this a resume" gate. The gate fails
	// open: a classifier error never blocks the analysis.
	ClassifyDocuments bool
	Log               telemetry.Logger
}

// Analyze runs the whole pipeline. It always returns a Result; failures are
// reported through Result.Outcome and Result.Message.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	var failure *pipeline.Failure
	defer func() {
		if rec := recover(); rec != nil {
			failure = pipeline.RecoveredFailure(a.Log, Domain, rec)
			res = errorResult(failure)
		}
		pipeline.Report(a.Log, Domain, res.Outcome, start, failure)
	}()

	res, err := a.analyze(ctx, in)
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

func (a *Analyzer) analyze(ctx context.Context, in Input) (Result, error) {
	limits := a.limits()
	if in.File == nil {
		return Result{}, pipeline.Fail(pipeline.OutcomeInputError, "Please upload a resume file.")
	}
	size := in.File.Size
	if size == 0 {
		size = int64(len(in.File.Data))
	}
	if err := limits.ValidateUpload(in.File.FileName, size); err != nil {
		return Result{}, pipeline.Fail(pipeline.OutcomeInputError, err.Error())
	}
	if err := limits.ValidateJobDescription(in.JobDescription); err != nil {
		return Result{}, pipeline.Fail(pipeline.OutcomeInputError, err.Error())
	}

	text, err := a.extractText(ctx, in.File)
	if err != nil {
		return Result{}, err
	}
	if len([]rune(strings.TrimSpace(text))) < limits.MinResumeText {
		return Result{}, pipeline.Fail(pipeline.OutcomeExtractionError,
			"The document appears to contain very little text. Please upload a text-based file, not a scanned image.")
	}

	var check *DocumentCheck
	if a.ClassifyDocuments {
		check = a.classify(ctx, text)
		if check != nil && !check.IsResume {
			msg := "The uploaded document does not look like a resume. Please upload your resume or CV."
			if check.Reason != "" {
				msg += " " + check.Reason
			}
			return Result{}, pipeline.Fail(pipeline.OutcomeWrongDocumentType, msg)
		}
	}

	messages, err := BuildPrompt(text, in.JobDescription)
	if err != nil {
		return Result{}, err
	}
	reply, err := a.Runner.Complete(ctx, Domain, llm.Request{Messages: messages})
	if err != nil {
		return Result{}, err
	}

	extraction, err := pipeline.Extract(reply, a.Policy)
	if err != nil {
		return Result{}, err
	}
	if extraction == nil {
		res := FallbackResult(reply)
		res.DocumentCheck = check
		return res, nil
	}
	if !Validate(extraction.Fields) {
		return Result{}, pipeline.Fail(pipeline.OutcomeInvalidStructure, "The AI response did not include an ATS score. Please try again.")
	}
	res, err := Decode(extraction.Raw)
	if err != nil {
		return Result{}, &pipeline.Failure{Outcome: pipeline.OutcomeInvalidStructure, Message: "The AI response could not be read. Please try again.", Err: err}
	}
	res.DocumentCheck = check
	return res, nil
}

func (a *Analyzer) extractText(ctx context.Context, file *Upload) (string, error) {
	if a.Extractor == nil {
		return "", errors.New("analyzer has no text extractor")
	}
	text, err := a.Extractor.ExtractText(ctx, file.FileName, file.Data)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	msg := "Could not read text from the uploaded file. Please upload a valid PDF or DOCX file."
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		msg = "This file format cannot be read. Please upload a PDF or DOCX file."
	case errors.Is(err, extract.ErrNoText):
		msg = "No readable text was found. The file might be scanned images; please upload a text-based file."
	case errors.Is(err, extract.ErrCorrupt):
		msg = "The file appears to be invalid or corrupted. Please re-upload it."
	}
	return "", &pipeline.Failure{Outcome: pipeline.OutcomeExtractionError, Message: msg, Err: err}
}

// ErrUnreadableCheck is returned by Classify when the reply has no verdict.
var ErrUnreadableCheck = errors.New("unreadable classifier reply")

// Classify asks the model whether text is a resume.
func (a *Analyzer) Classify(ctx context.Context, text string) (*DocumentCheck, error) {
	messages, err := BuildClassifyPrompt(text)
	if err != nil {
		return nil, err
	}
	reply, err := a.Runner.Complete(ctx, Domain+".classify", llm.Request{Messages: messages})
	if err != nil {
		return nil, err
	}
	check, ok := parseDocumentCheck(reply)
	if !ok {
		return nil, ErrUnreadableCheck
	}
	return check, nil
}

// classify runs the gate. It returns nil whenever the answer cannot be
// obtained or read.
func (a *Analyzer) classify(ctx context.Context, text string) *DocumentCheck {
	check, err := a.Classify(ctx, text)
	if err != nil {
		telemetry.OrDefault(a.Log).Info("analysis.classify_skipped", map[string]any{"error": err.Error()})
		return nil
	}
	return check
}

// minRejectConfidence is the classifier confidence needed to reject a document.
const minRejectConfidence = 0.5

func parseDocumentCheck(reply string) (*DocumentCheck, bool) {
	raw, ok := llm.ExtractJSONObject(reply)
	if !ok {
		return nil, false
	}
	isResume := gjson.GetBytes(raw, "is_resume")
	if !isResume.Exists() {
		return nil, false
	}
	check := &DocumentCheck{
		IsResume:   isResume.Bool(),
		Confidence: 1,
		Reason:     strings.TrimSpace(gjson.GetBytes(raw, "reason").String()),
	}
	if c := gjson.GetBytes(raw, "confidence"); c.Exists() {
		check.Confidence = c.Float()
	}
	if !check.IsResume && check.Confidence < minRejectConfidence {
		check.IsResume = true
	}
	return check, true
}

func (a *Analyzer) limits() Limits {
	l := a.Limits
	d := DefaultLimits()
	if l.MaxFileBytes == 0 {
		l.MaxFileBytes = d.MaxFileBytes
	}
	if len(l.AllowedExtensions) == 0 {
		l.AllowedExtensions = d.AllowedExtensions
	}
	if l.MinJobDescription == 0 {
		l.MinJobDescription = d.MinJobDescription
	}
	if l.MaxJobDescription == 0 {
		l.MaxJobDescription = d.MaxJobDescription
	}
	if l.MinResumeText == 0 {
		l.MinResumeText = d.MinResumeText
	}
	return l
}
