package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Chat roles understood by chat-completions providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion request. Model, temperature and token limits
// come from the ProviderConfig the provider was built with.
type Request struct {
	Messages []Message
	// JSONMode asks the provider to constrain output to a JSON object when it supports it.
	JSONMode bool
}

// Provider abstracts an HTTP-based completion service.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// PromptHash returns a stable sha256 of the rendered conversation, used to
// correlate log lines without logging resume content.
func PromptHash(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
