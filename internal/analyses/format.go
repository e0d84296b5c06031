package analyses

import (
	"fmt"
	"strings"

	"hirevision-backend/internal/pipeline"
)

// FormatMarkdown renders a result as a readable report.
func FormatMarkdown(r Result) string {
	var b strings.Builder
	if r.Outcome.Failed() {
		fmt.Fprintf(&b, "## Analysis failed\n\n%s\n", r.Message)
		return b.String()
	}
	if r.ATSScore.Numeric() {
		fmt.Fprintf(&b, "## ATS Score: %d/100\n", r.ATSScore.Value)
	} else {
		fmt.Fprintf(&b, "## ATS Score: %s\n", r.ATSScore.Label)
	}
	if r.Outcome == pipeline.OutcomeDemo {
		b.WriteString("\n_Demo data: no AI provider is configured._\n")
	}
	fmt.Fprintf(&b, "\n### Score Explanation\n%s\n", orDefault(r.ScoreExplanation, "No explanation available"))
	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Areas for Improvement", r.Weaknesses)
	writeList(&b, "Recommendations", r.Recommendations)
	writeList(&b, "Skills Gap Analysis", r.SkillsGap)
	writeList(&b, "Upskilling Suggestions", r.UpskillingSuggestions)
	fmt.Fprintf(&b, "\n### Overall Assessment\n%s\n", orDefault(r.OverallAssessment, "No assessment available"))
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n### %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
