package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hirevision-backend/internal/pipeline"
)

// FallbackScore is used when the model's ats_score cannot be read as a number.
const FallbackScore = 75

// Score is the ATS score. A result that carries no numeric score (error or
// degraded results) has a Label instead, which is what gets serialised.
type Score struct {
	Value int
	Label string
}

// Numeric reports whether the score carries a number.
func (s Score) Numeric() bool { return s.Label == "" }

func (s Score) String() string {
	if s.Label != "" {
		return s.Label
	}
	return strconv.Itoa(s.Value)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if s.Label != "" {
		return json.Marshal(s.Label)
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// UnmarshalJSON coerces numbers and numeric strings ("82", "82/100", "82.5")
// into 0..100. Anything else becomes FallbackScore, except the labels this
// package writes itself, which round-trip.
func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = Score{Value: FallbackScore}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*s = Score{Value: clampScore(n)}
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		switch text {
		case errorScoreLabel, fallbackScoreLabel:
			*s = Score{Label: text}
			return nil
		}
		*s = CoerceScore(text)
		return nil
	}
	*s = Score{Value: FallbackScore}
	return nil
}

// CoerceScore parses the leading number of text, or returns FallbackScore.
func CoerceScore(text string) Score {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "/%"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Score{Value: FallbackScore}
	}
	return Score{Value: clampScore(n)}
}

func clampScore(n float64) int {
	switch {
	case math.IsNaN(n):
		return FallbackScore
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return int(math.Round(n))
	}
}

const (
	errorScoreLabel    = "Error"
	fallbackScoreLabel = "Analysis completed"
)

// DocumentCheck is the classification gate's verdict.
type DocumentCheck struct {
	IsResume   bool    `json:"is_resume"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Result is the structured resume analysis. Error and degraded results have
// the same shape.
type Result struct {
	Outcome   pipeline.Outcome `json:"outcome"`
	Message   string           `json:"message,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`

	ATSScore              Score               `json:"ats_score"`
	ScoreExplanation      string              `json:"score_explanation"`
	Strengths             pipeline.StringList `json:"strengths"`
	Weaknesses            pipeline.StringList `json:"weaknesses"`
	Recommendations       pipeline.StringList `json:"recommendations"`
	SkillsGap             pipeline.StringList `json:"skills_gap"`
	UpskillingSuggestions pipeline.StringList `json:"upskilling_suggestions"`
	OverallAssessment     string              `json:"overall_assessment"`

	DocumentCheck *DocumentCheck `json:"document_check,omitempty"`
}

// Validate accepts an extracted mapping when it carries an ats_score. The
// score need not be numeric; Decode falls back to FallbackScore.
func Validate(fields map[string]any) bool {
	if fields == nil {
		return false
	}
	v, ok := fields["ats_score"]
	return ok && v != nil
}

// Decode reads the model's JSON object into a Result.
func Decode(raw json.RawMessage) (Result, error) {
	var wire struct {
		ATSScore              Score               `json:"ats_score"`
		ScoreExplanation      any                 `json:"score_explanation"`
		Strengths             pipeline.StringList `json:"strengths"`
		Weaknesses            pipeline.StringList `json:"weaknesses"`
		Recommendations       pipeline.StringList `json:"recommendations"`
		SkillsGap             pipeline.StringList `json:"skills_gap"`
		UpskillingSuggestions pipeline.StringList `json:"upskilling_suggestions"`
		OverallAssessment     any                 `json:"overall_assessment"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Result{}, fmt.Errorf("decode analysis: %w", err)
	}
	return Result{
		Outcome:               pipeline.OutcomeSuccess,
		ATSScore:              wire.ATSScore,
		ScoreExplanation:      textOf(wire.ScoreExplanation),
		Strengths:             nonNil(wire.Strengths),
		Weaknesses:            nonNil(wire.Weaknesses),
		Recommendations:       nonNil(wire.Recommendations),
		SkillsGap:             nonNil(wire.SkillsGap),
		UpskillingSuggestions: nonNil(wire.UpskillingSuggestions),
		OverallAssessment:     textOf(wire.OverallAssessment),
	}, nil
}

// ErrorResult reports a failed run in the normal result shape.
func ErrorResult(outcome pipeline.Outcome, message string) Result {
	return Result{
		Outcome:               outcome,
		Message:               message,
		ATSScore:              Score{Label: errorScoreLabel},
		ScoreExplanation:      "Error during analysis: " + message,
		Strengths:             pipeline.StringList{},
		Weaknesses:            pipeline.StringList{},
		Recommendations:       pipeline.StringList{},
		SkillsGap:             pipeline.StringList{},
		UpskillingSuggestions: pipeline.StringList{},
		OverallAssessment:     "Error occurred: " + message,
	}
}

// FallbackResult wraps a reply that had no JSON object in it.
func FallbackResult(raw string) Result {
	return Result{
		Outcome:               pipeline.OutcomeDegraded,
		ATSScore:              Score{Label: fallbackScoreLabel},
		ScoreExplanation:      raw,
		Strengths:             pipeline.StringList{"Analysis completed"},
		Weaknesses:            pipeline.StringList{"See detailed feedback"},
		Recommendations:       pipeline.StringList{"Review the analysis above"},
		SkillsGap:             pipeline.StringList{"Check the analysis"},
		UpskillingSuggestions: pipeline.StringList{"Refer to recommendations"},
		OverallAssessment:     raw,
	}
}

// DemoResult is stored instead of a real analysis when no provider is
// configured and demo mode is on.
func DemoResult() Result {
	return Result{
		Outcome:          pipeline.OutcomeDemo,
		ATSScore:         Score{Value: 78},
		ScoreExplanation: "Demo analysis: Your resume shows good technical skills and relevant experience. The ATS score indicates a strong match for the position.",
		Strengths: pipeline.StringList{
			"Strong technical background in software development",
			"Relevant project experience",
			"Good educational qualifications",
			"Demonstrated problem-solving skills",
		},
		Weaknesses: pipeline.StringList{
			"Could include more quantifiable achievements",
			"Consider adding more industry-specific keywords",
			"Experience section could be more detailed",
		},
		Recommendations: pipeline.StringList{
			"Add specific metrics and numbers to achievements",
			"Include more relevant keywords from the job description",
			"Expand on technical skills and tools used",
		},
		SkillsGap: pipeline.StringList{
			"Advanced cloud computing (AWS/Azure)",
			"Microservices architecture",
			"DevOps practices",
		},
		UpskillingSuggestions: pipeline.StringList{
			"Take AWS or Azure certification courses",
			"Learn about microservices and containerization",
			"Study DevOps tools and practices",
		},
		OverallAssessment: "Demo assessment: You have a solid foundation and good potential for this role. Focus on highlighting quantifiable achievements and adding relevant technical skills to improve your ATS score.",
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	}
}

func nonNil(l pipeline.StringList) pipeline.StringList {
	if l == nil {
		return pipeline.StringList{}
	}
	return l
}
