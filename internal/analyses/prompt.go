package analyses

import (
	"unicode/utf8"

	"hirevision-backend/internal/llm"
)

// classifyInputLimit caps how much document text is sent to the classifier.
const classifyInputLimit = 4000

// BuildPrompt sanitizes the inputs and renders the analysis conversation.
func BuildPrompt(resumeText, jobDescription string) ([]llm.Message, error) {
	return llm.BuildMessages(llm.PromptResumeAnalysisSystem, llm.PromptResumeAnalysis, map[string]string{
		"RESUME_TEXT":     llm.Sanitize(resumeText),
		"JOB_DESCRIPTION": llm.Sanitize(jobDescription),
	})
}

// BuildClassifyPrompt renders the "is this a resume" conversation from the
// start of the document.
func BuildClassifyPrompt(documentText string) ([]llm.Message, error) {
	return llm.BuildMessages(llm.PromptResumeClassifySystem, llm.PromptResumeClassify, map[string]string{
		"DOCUMENT_TEXT": llm.Sanitize(truncateRunes(documentText, classifyInputLimit)),
	})
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
