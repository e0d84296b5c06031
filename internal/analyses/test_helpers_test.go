package analyses

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/llmtest"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/storage/object/local"
	"hirevision-backend/internal/shared/telemetry"
)

const (
	testJobDescription = "Senior Go engineer building distributed backend services on AWS."
	testUserID         = "user-1"
)

var testResumeText = "Jane Doe. Backend engineer with six years of Go, PostgreSQL and Kubernetes experience. " +
	strings.Repeat("Built and operated high traffic services. ", 3)

type fakeExtractor struct {
	text  string
	err   error
	panic bool
}

func (f fakeExtractor) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	if f.panic {
		panic("extractor exploded")
	}
	return f.text, f.err
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []queue.Message
	err  error
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *recordingQueue) sent() []queue.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]queue.Message(nil), q.msgs...)
}

func testRunner(p llm.Provider) *pipeline.Runner {
	return &pipeline.Runner{
		Providers: pipeline.StaticProvider(p),
		Retry:     llm.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond},
		Log:       telemetry.Nop(),
	}
}

func testAnalyzer(p llm.Provider) *Analyzer {
	return &Analyzer{
		Runner:    testRunner(p),
		Extractor: fakeExtractor{text: testResumeText},
		Log:       telemetry.Nop(),
	}
}

func testUpload() *Upload {
	return &Upload{FileName: "resume.pdf", Data: []byte("%PDF-1.4 fake")}
}

type serviceFixture struct {
	svc      *Service
	repo     *MemoryRepo
	queue    *recordingQueue
	provider *llmtest.Provider
}

func newServiceFixture(t *testing.T, provider *llmtest.Provider) serviceFixture {
	t.Helper()
	repo := NewMemoryRepo()
	q := &recordingQueue{}
	analyzer := testAnalyzer(provider)
	if provider == nil {
		analyzer.Runner = nil
	}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{
		Repo:     repo,
		Store:    local.New(t.TempDir()),
		Queue:    q,
		Analyzer: analyzer,
		Log:      telemetry.Nop(),
		Now:      func() time.Time { return now },
	}
	return serviceFixture{svc: svc, repo: repo, queue: q, provider: provider}
}

func validCreateInput() CreateInput {
	body := "%PDF-1.4 fake resume bytes"
	return CreateInput{
		UserID:         testUserID,
		FileName:       "resume.pdf",
		Size:           int64(len(body)),
		Body:           strings.NewReader(body),
		JobDescription: testJobDescription,
	}
}
