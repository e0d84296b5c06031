package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/telemetry"
)

const chatCompletionsPath = "/chat/completions"

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Client calls an OpenAI-compatible Chat Completions endpoint.
type Client struct {
	cfg        llm.ProviderConfig
	endpoint   string
	httpClient *http.Client
	log        telemetry.Logger
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseTransport http.RoundTripper
	log           telemetry.Logger
}

// WithTransport sets the transport beneath the bearer-token layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.baseTransport = rt }
}

// WithLogger sets the logger used for per-call events.
func WithLogger(l telemetry.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// NewClient constructs a client for cfg. The API key is attached as a bearer
// token by an oauth2 static token source.
func NewClient(cfg llm.ProviderConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%s: model is required", cfg.Name)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &llm.ConfigurationError{Provider: cfg.Name, Key: "api key", Reason: "is empty"}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%s: base url is required", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = llm.ProviderOpenAI
	}
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := &http.Client{Transport: o.baseTransport}
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}))
	httpClient.Timeout = cfg.Timeout

	return &Client{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + chatCompletionsPath,
		httpClient: httpClient,
		log:        telemetry.OrDefault(o.log),
	}, nil
}

// Name returns the provider name from the config.
func (c *Client) Name() string { return c.cfg.Name }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         *float64        `json:"temperature,omitempty"`
	MaxTokens           *int            `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request and returns the reply text.
// Every failure is a *llm.ProviderError.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	return c.CompleteWithHeaders(ctx, req, nil)
}

// CompleteWithHeaders is Complete with additional request headers layered
// over the configured extra headers.
func (c *Client) CompleteWithHeaders(ctx context.Context, req llm.Request, headers map[string]string) (string, error) {
	start := time.Now()
	text, usage, err := c.do(ctx, req, headers)
	result := "ok"
	if err != nil {
		result = string(llm.Classify(err))
	}
	metrics.IncLLMCall(c.cfg.Name, result)
	metrics.ObserveLLMDurationMs(metrics.SinceMillis(start))

	fields := map[string]any{
		"provider":    c.cfg.Name,
		"model":       c.cfg.Model,
		"prompt_hash": llm.PromptHash(req.Messages),
		"duration_ms": time.Since(start).Milliseconds(),
		"result":      result,
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	if err != nil {
		fields["error"] = err.Error()
		c.log.Error("llm.call", fields)
		return "", err
	}
	c.log.Info("llm.call", fields)
	return text, nil
}

type usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func (c *Client) do(ctx context.Context, req llm.Request, headers map[string]string) (string, *usage, error) {
	if len(req.Messages) == 0 {
		return "", nil, c.fail(0, llm.CategoryUnknown, errors.New("no messages"))
	}
	body := c.buildRequest(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, c.fail(0, llm.CategoryUnknown, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, c.fail(0, llm.CategoryUnknown, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", nil, c.fail(0, llm.CategoryUnknown, ctxErr)
		}
		kind := llm.KindForTransportError(err)
		if kind == llm.CategoryTimeout {
			return "", nil, c.fail(0, kind, fmt.Errorf("request timeout: %w", err))
		}
		return "", nil, c.fail(0, kind, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, c.fail(resp.StatusCode, llm.KindForTransportError(err), fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, c.fail(resp.StatusCode, llm.KindForStatus(resp.StatusCode), errors.New(errorDetail(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", nil, c.fail(resp.StatusCode, llm.CategoryUnknown, fmt.Errorf("response parse: %w", err))
	}
	if parsed.Error != nil {
		return "", nil, c.fail(resp.StatusCode, llm.CategoryUnknown, fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", nil, c.fail(resp.StatusCode, llm.CategoryUnknown, errors.New("response missing choices"))
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", nil, c.fail(resp.StatusCode, llm.CategoryUnknown, errors.New("response empty content"))
	}

	var u *usage
	if parsed.Usage != nil {
		u = &usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}
	return content, u, nil
}

func (c *Client) buildRequest(req llm.Request) chatRequest {
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	body := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	}
	// gpt-5 family models reject temperature and max_tokens.
	if isGPT5(c.cfg.Model) {
		body.MaxCompletionTokens = c.cfg.MaxTokens
	} else {
		temp := c.cfg.Temperature
		body.Temperature = &temp
		body.MaxTokens = c.cfg.MaxTokens
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return body
}

func (c *Client) fail(status int, kind llm.Category, err error) *llm.ProviderError {
	return &llm.ProviderError{Provider: c.cfg.Name, StatusCode: status, Kind: kind, Err: err}
}

func errorDetail(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if text == "" {
		return "empty response body"
	}
	return text
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Provider = (*Client)(nil)
