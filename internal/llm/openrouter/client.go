package openrouter

import (
	"context"
	"strings"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/openai"
)

// Attribution headers OpenRouter uses to identify the calling application.
const (
	HeaderReferer = "HTTP-Referer"
	HeaderTitle   = "X-Title"
)

const (
	defaultReferer = "http://localhost:8080"
	defaultTitle   = "HireVision"
)

// Client talks to OpenRouter's OpenAI-compatible API and always sends the
// attribution headers.
type Client struct {
	inner   *openai.Client
	headers map[string]string
}

// NewClient builds an OpenRouter client. Missing attribution headers fall back to defaults.
func NewClient(cfg llm.ProviderConfig, opts ...openai.Option) (*Client, error) {
	cfg.Name = llm.ProviderOpenRouter
	headers := map[string]string{
		HeaderReferer: defaultReferer,
		HeaderTitle:   defaultTitle,
	}
	for k, v := range cfg.ExtraHeaders {
		if strings.TrimSpace(v) != "" {
			headers[k] = v
		}
	}
	cfg.ExtraHeaders = nil
	inner, err := openai.NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{inner: inner, headers: headers}, nil
}

func (c *Client) Name() string { return llm.ProviderOpenRouter }

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	return c.inner.CompleteWithHeaders(ctx, req, c.headers)
}

var _ llm.Provider = (*Client)(nil)
