package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/shared/telemetry"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

type captured struct {
	mu      sync.Mutex
	bodies  []map[string]any
	headers []http.Header
}

func (c *captured) add(r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	c.mu.Lock()
	c.bodies = append(c.bodies, body)
	c.headers = append(c.headers, r.Header.Clone())
	c.mu.Unlock()
}

func testConfig(baseURL, model string) llm.ProviderConfig {
	maxTokens := 2000
	return llm.ProviderConfig{
		Name:         llm.ProviderOpenAI,
		BaseURL:      baseURL,
		APIKey:       "sk-test",
		Model:        model,
		Temperature:  0.3,
		MaxTokens:    &maxTokens,
		ExtraHeaders: map[string]string{"X-Extra": "1"},
		Timeout:      5 * time.Second,
	}
}

func testMessages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "system"},
		{Role: llm.RoleUser, Content: "user"},
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var cap captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		cap.add(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"message":{"role":"assistant","content":"  {\"ok\":true}  "}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL+"/v1/", "gpt-4"), WithLogger(telemetry.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{Messages: testMessages(), JSONMode: true})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out)
	}

	cap.mu.Lock()
	defer cap.mu.Unlock()
	if len(cap.bodies) != 1 {
		t.Fatalf("expected 1 request, got %d", len(cap.bodies))
	}
	body := cap.bodies[0]
	if body["model"] != "gpt-4" || body["temperature"] != 0.3 || body["max_tokens"] != float64(2000) {
		t.Fatalf("unexpected body: %v", body)
	}
	if rf, _ := body["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", body["messages"])
	}
	h := cap.headers[0]
	if h.Get("Authorization") != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header %q", h.Get("Authorization"))
	}
	if h.Get("X-Extra") != "1" {
		t.Fatalf("extra header missing")
	}
}

func TestCompleteGPT5OmitsTemperature(t *testing.T) {
	var cap captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.add(r)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, "gpt-5-mini"), WithLogger(telemetry.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Messages: testMessages()}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	body := cap.bodies[0]
	if _, ok := body["temperature"]; ok {
		t.Fatalf("temperature should be omitted for gpt-5: %v", body)
	}
	if body["max_completion_tokens"] != float64(2000) {
		t.Fatalf("expected max_completion_tokens, got %v", body)
	}
	if _, ok := body["response_format"]; ok {
		t.Fatalf("response_format should be omitted without JSON mode")
	}
}

func TestCompleteMapsStatusToCategory(t *testing.T) {
	tests := []struct {
		status int
		want   llm.Category
	}{
		{status: http.StatusTooManyRequests, want: llm.CategoryRateLimit},
		{status: http.StatusUnauthorized, want: llm.CategoryAuthMissing},
		{status: http.StatusBadGateway, want: llm.CategoryServerError},
		{status: http.StatusGatewayTimeout, want: llm.CategoryTimeout},
		{status: http.StatusBadRequest, want: llm.CategoryUnknown},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"x"}}`))
			}))
			defer server.Close()

			client, err := NewClient(testConfig(server.URL, "gpt-4"), WithLogger(telemetry.Nop()))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			_, err = client.Complete(context.Background(), llm.Request{Messages: testMessages()})
			var perr *llm.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.StatusCode != tt.status || perr.Kind != tt.want {
				t.Fatalf("got status=%d kind=%s, want %d %s", perr.StatusCode, perr.Kind, tt.status, tt.want)
			}
			if llm.Classify(err) != tt.want {
				t.Fatalf("Classify = %s, want %s", llm.Classify(err), tt.want)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL, "gpt-4")
	cfg.Timeout = 50 * time.Millisecond
	client, err := NewClient(cfg, WithLogger(telemetry.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Messages: testMessages()})
	if llm.Classify(err) != llm.CategoryTimeout {
		t.Fatalf("expected timeout, got %v (%s)", err, llm.Classify(err))
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, "gpt-4"), WithLogger(telemetry.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Messages: testMessages()}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	cfg := testConfig("http://example.invalid", "gpt-4")
	cfg.APIKey = ""
	if _, err := NewClient(cfg); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestErrorDetailTruncatesOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"ascii", strings.Repeat("a", maxErrorBody+10), maxErrorBody},
		{"multibyte across limit", strings.Repeat("a", maxErrorBody-1) + "é" + "tail", maxErrorBody - 1},
		{"all multibyte", strings.Repeat("日", maxErrorBody), maxErrorBody - maxErrorBody%3},
		{"short", "bad gateway", len("bad gateway")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorDetail([]byte(tt.body))
			if !utf8.ValidString(got) {
				t.Fatalf("detail is not valid UTF-8: %q", got)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d bytes, got %d", tt.want, len(got))
			}
		})
	}
}
