package resumebuilds

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/llmtest"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/shared/storage/object/local"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
)

const testUserID = "user-1"

const testLatex = `\documentclass{article}
\begin{document}
\section*{Jane Doe}
Backend engineer who ships reliable Go services.
\end{document}`

func jsonReply() string {
	return `Here is your resume: {"latex_content": "\\documentclass{article}\n\\begin{document}\n\\section*{Jane Doe}\nBackend engineer who ships reliable Go services.\n\\end{document}"}`
}

func validInput() Input {
	return Input{
		ContactInfo: ContactInfo{
			Name:   "Jane Doe",
			Email:  "jane@example.com",
			GitHub: "https://github.com/janedoe",
		},
		Education: []Education{{
			Degree:      "B.Sc. Computer Science",
			Institution: "Example University",
			StartDate:   "2016",
			EndDate:     "2020",
		}},
		Experience: []Experience{{
			Position:    "Backend Engineer",
			Company:     "Acme",
			StartDate:   "2020",
			Description: []string{"Built <b>billing</b> service handling 2M requests/day"},
		}},
		Projects: []Project{{
			Name:        "queue-bench",
			Description: "Benchmarks for message brokers",
			GithubURL:   "https://github.com/janedoe/queue-bench",
		}},
		Skills: Skills{ProgrammingLanguages: []string{"Go", "Python"}},
	}
}

func testBuilder(p llm.Provider) *Builder {
	return &Builder{
		Runner: &pipeline.Runner{
			Providers: pipeline.StaticProvider(p),
			Retry:     llm.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond},
			Log:       telemetry.Nop(),
		},
		Log: telemetry.Nop(),
	}
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

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("disk full")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return nil
}

type serviceFixture struct {
	svc      *Service
	repo     *MemoryRepo
	queue    *recordingQueue
	provider *llmtest.Provider
}

func newServiceFixture(t *testing.T, provider *llmtest.Provider) serviceFixture {
	t.Helper()
	builder := &Builder{Log: telemetry.Nop()}
	if provider != nil {
		builder = testBuilder(provider)
	}
	repo := NewMemoryRepo()
	q := &recordingQueue{}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return serviceFixture{
		svc: &Service{
			Repo:    repo,
			Store:   local.New(t.TempDir()),
			Queue:   q,
			Builder: builder,
			Log:     telemetry.Nop(),
			Now:     func() time.Time { return now },
		},
		repo:     repo,
		queue:    q,
		provider: provider,
	}
}

func mustStatus(t *testing.T, repo *MemoryRepo, id string, want tasks.Status) ResumeBuild {
	t.Helper()
	build, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	if build.TaskStatus != want {
		t.Fatalf("expected %s, got %s (%s %s)", want, build.TaskStatus, build.ErrorCode, build.TaskError)
	}
	return build
}
