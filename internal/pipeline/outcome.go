package pipeline

import (
	"fmt"
	"strings"

	"hirevision-backend/internal/llm"
)

// Outcome is the terminal state of one orchestrator run.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeDegraded          Outcome = "degraded"
	OutcomeDemo              Outcome = "demo"
	OutcomeInputError        Outcome = "input_error"
	OutcomeExtractionError   Outcome = "extraction_error"
	OutcomeWrongDocumentType Outcome = "wrong_document_type"
	OutcomeNotConfigured     Outcome = "not_configured"
	OutcomeProviderError     Outcome = "provider_error"
	OutcomeMalformedResponse Outcome = "malformed_response"
	OutcomeInvalidStructure  Outcome = "invalid_structure"
	OutcomeUnexpectedError   Outcome = "unexpected_error"
)

// Failed reports whether the outcome carries no usable result.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeSuccess, OutcomeDegraded, OutcomeDemo:
		return false
	default:
		return true
	}
}

// Task error codes persisted alongside failed records.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeExtraction     = "EXTRACTION_ERROR"
	CodeWrongDocument  = "WRONG_DOCUMENT"
	CodeNotConfigured  = "NOT_CONFIGURED"
	CodeRateLimit      = "LLM_RATE_LIMIT"
	CodeTimeout        = "LLM_TIMEOUT"
	CodeUnavailable    = "LLM_UNAVAILABLE"
	CodeSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	CodeInternal       = "INTERNAL_ERROR"
)

// Code maps an outcome (and provider category, when relevant) to a task error code.
func (o Outcome) Code(category llm.Category) string {
	switch o {
	case OutcomeInputError:
		return CodeValidation
	case OutcomeExtractionError:
		return CodeExtraction
	case OutcomeWrongDocumentType:
		return CodeWrongDocument
	case OutcomeNotConfigured:
		return CodeNotConfigured
	case OutcomeProviderError:
		switch category {
		case llm.CategoryRateLimit:
			return CodeRateLimit
		case llm.CategoryTimeout:
			return CodeTimeout
		case llm.CategoryAuthMissing:
			return CodeNotConfigured
		default:
			return CodeUnavailable
		}
	case OutcomeMalformedResponse, OutcomeInvalidStructure:
		return CodeSchemaMismatch
	case OutcomeSuccess, OutcomeDegraded, OutcomeDemo:
		return ""
	default:
		return CodeInternal
	}
}

// MalformedPolicy decides what happens when a reply contains no JSON object.
// It applies to every domain.
type MalformedPolicy string

const (
	// PolicyDegrade wraps the raw reply in the domain's fallback result.
	PolicyDegrade MalformedPolicy = "degrade"
	// PolicyStrict fails the run with OutcomeMalformedResponse.
	PolicyStrict MalformedPolicy = "strict"
)

// ParseMalformedPolicy accepts "degrade" or "strict"; anything else is degrade.
func ParseMalformedPolicy(raw string) MalformedPolicy {
	if strings.EqualFold(strings.TrimSpace(raw), string(PolicyStrict)) {
		return PolicyStrict
	}
	return PolicyDegrade
}

// Failure is the error type every pipeline step returns. Message is safe to
// show to users.
type Failure struct {
	Outcome  Outcome
	Category llm.Category
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Outcome, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Outcome, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Fail is shorthand for a Failure without a cause.
func Fail(outcome Outcome, message string) *Failure {
	return &Failure{Outcome: outcome, Message: message}
}
