package llm

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

// Prompt template names.
const (
	PromptResumeAnalysisSystem = "resume_analysis_system"
	PromptResumeAnalysis       = "resume_analysis"
	PromptResumeClassify       = "resume_classify"
	PromptResumeClassifySystem = "resume_classify_system"
	PromptLearningPathSystem   = "learning_path_system"
	PromptLearningPath         = "learning_path"
	PromptResumeBuilderSystem  = "resume_builder_system"
	PromptResumeBuilder        = "resume_builder"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// PromptTemplate returns the template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	data, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// RenderPrompt fills {{KEY}} placeholders in the named template. Values are
// inserted in a single pass, so placeholder text inside a value is left alone.
func RenderPrompt(name string, vars map[string]string) (string, error) {
	tmpl, ok := PromptTemplate(name)
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(vars)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}

// BuildMessages renders a system + user conversation from two templates.
func BuildMessages(systemName, userName string, vars map[string]string) ([]Message, error) {
	system, ok := PromptTemplate(systemName)
	if !ok {
		return nil, fmt.Errorf("unknown prompt template %q", systemName)
	}
	user, err := RenderPrompt(userName, vars)
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}, nil
}
