package resumebuilds

import (
	"encoding/json"
	"fmt"

	"hirevision-backend/internal/llm"
)

// BuildPrompt renders the builder conversation with the sanitized input
// embedded as indented JSON.
func BuildPrompt(in Input) ([]llm.Message, error) {
	data, err := json.MarshalIndent(in.Sanitized(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode builder data: %w", err)
	}
	return llm.BuildMessages(llm.PromptResumeBuilderSystem, llm.PromptResumeBuilder, map[string]string{
		"BUILDER_DATA": string(data),
	})
}
