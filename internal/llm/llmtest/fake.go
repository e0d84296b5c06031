// Package llmtest provides scripted llm.Provider fakes for tests.
package llmtest

import (
	"context"
	"sync"

	"hirevision-backend/internal/llm"
)

// Reply is one scripted provider response.
type Reply struct {
	Text string
	Err  error
}

// Provider replays Replies in order; the last reply repeats once the script runs out.
type Provider struct {
	ProviderName string
	Replies      []Reply

	mu       sync.Mutex
	requests []llm.Request
}

// Text returns a provider that always answers text.
func Text(text string) *Provider {
	return &Provider{Replies: []Reply{{Text: text}}}
}

// Failing returns a provider that always fails with err.
func Failing(err error) *Provider {
	return &Provider{Replies: []Reply{{Err: err}}}
}

func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "fake"
	}
	return p.ProviderName
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	idx := len(p.requests)
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.Replies) == 0 {
		return "", nil
	}
	if idx >= len(p.Replies) {
		idx = len(p.Replies) - 1
	}
	r := p.Replies[idx]
	return r.Text, r.Err
}

// Calls returns how many times Complete was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Requests returns a copy of the recorded requests.
func (p *Provider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}

var _ llm.Provider = (*Provider)(nil)
