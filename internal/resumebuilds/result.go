package resumebuilds

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"hirevision-backend/internal/pipeline"
)

// Result is the outcome of one build. LatexContent is moved to the object
// store before the result is persisted.
type Result struct {
	Outcome   pipeline.Outcome `json:"outcome"`
	Message   string           `json:"message,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`

	LatexContent string `json:"latex_content,omitempty"`
	WordCount    int    `json:"word_count"`
}

var latexMarkers = []string{`\documentclass`, `\begin{document}`, `\end{document}`}

// ValidLatex reports whether doc looks like a complete LaTeX document.
func ValidLatex(doc string) bool {
	for _, m := range latexMarkers {
		if !strings.Contains(doc, m) {
			return false
		}
	}
	return true
}

// Validate reports whether an extracted mapping carries a complete document.
func Validate(fields map[string]any) bool {
	doc, ok := fields["latex_content"].(string)
	return ok && ValidLatex(doc)
}

// Decode reads a validated JSON object into a Result.
func Decode(raw json.RawMessage) (Result, error) {
	var wire struct {
		LatexContent pipeline.Text `json:"latex_content"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Result{}, fmt.Errorf("decode resume build: %w", err)
	}
	return newResult(pipeline.OutcomeSuccess, string(wire.LatexContent)), nil
}

func newResult(outcome pipeline.Outcome, doc string) Result {
	doc = strings.TrimSpace(doc)
	return Result{Outcome: outcome, LatexContent: doc, WordCount: CountWords(doc)}
}

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")

// FallbackResult treats a reply without a JSON object as the LaTeX document
// itself. Markdown code fences are removed. The caller still validates it.
func FallbackResult(raw string) Result {
	doc := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(doc); m != nil {
		doc = m[1]
	}
	return newResult(pipeline.OutcomeDegraded, doc)
}

// ErrorResult reports a failed build: no LaTeX, message set.
func ErrorResult(outcome pipeline.Outcome, message string) Result {
	return Result{Outcome: outcome, Message: message}
}

var (
	commandPattern = regexp.MustCompile(`\\[a-zA-Z@]+\*?(\[[^\]]*\])?`)
	commentPattern = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
	bracePattern   = regexp.MustCompile(`[{}]`)
)

// CountWords approximates the visible word count of the document body.
func CountWords(doc string) int {
	body := doc
	if i := strings.Index(body, `\begin{document}`); i >= 0 {
		body = body[i+len(`\begin{document}`):]
	}
	if i := strings.Index(body, `\end{document}`); i >= 0 {
		body = body[:i]
	}
	body = commentPattern.ReplaceAllString(body, "$1")
	body = commandPattern.ReplaceAllString(body, " ")
	body = bracePattern.ReplaceAllString(body, " ")
	n := 0
	for _, f := range strings.Fields(body) {
		if strings.IndexFunc(f, isWordRune) >= 0 {
			n++
		}
	}
	return n
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127
}

// DemoResult is stored when no provider is configured and demo mode is on.
func DemoResult() Result {
	return newResult(pipeline.OutcomeDemo, demoLatex)
}

const demoLatex = `\documentclass[11pt]{article}
\usepackage[margin=0.75in]{geometry}
\usepackage{enumitem}
\usepackage[hidelinks]{hyperref}
\begin{document}
\begin{center}
{\LARGE \textbf{Demo Candidate}}\\
demo@example.com \quad | \quad \href{https://github.com/example}{github.com/example}
\end{center}

\section*{Education}
\textbf{B.Sc. Computer Science}, Example University \hfill 2018 -- 2022

\section*{Projects}
\textbf{Demo Project} \hfill Go, PostgreSQL
\begin{itemize}[leftmargin=*]
  \item Demo resume: configure an AI provider to generate a resume from your own data.
\end{itemize}

\section*{Skills}
Go, Python, SQL, Docker
\end{document}`
