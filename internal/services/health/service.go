// Package health reports whether the process and its collaborators are usable.
package health

import (
	"context"
	"errors"
	"time"

	"hirevision-backend/internal/llm"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	// DB is nil when the in-memory repositories are in use.
	DB Pinger
	// Resolver reports whether an LLM provider is configured. A missing
	// provider does not make the service unhealthy; demo mode covers it.
	Resolver llm.Resolver
	Timeout  time.Duration
}

// Status is the /health payload.
type Status struct {
	OK       bool              `json:"ok"`
	Database string            `json:"database"`
	LLM      string            `json:"llm"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// NewService constructs a new health service.
func NewService(db Pinger, resolver llm.Resolver) *Service {
	return &Service{DB: db, Resolver: resolver, Timeout: 2 * time.Second}
}

// Status runs the checks. OK is false only when a required dependency is down.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", LLM: "unknown"}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			st.OK = false
			st.Database = "down"
			st.addError("database", err)
		} else {
			st.Database = "up"
		}
	}

	if s.Resolver != nil {
		_, err := s.Resolver.Resolve(ctx)
		switch {
		case err == nil:
			st.LLM = "configured"
		case errors.Is(err, llm.ErrNotConfigured):
			st.LLM = "not_configured"
		default:
			st.LLM = "error"
			st.addError("llm", err)
		}
	}
	return st
}

func (s *Status) addError(name string, err error) {
	if s.Errors == nil {
		s.Errors = map[string]string{}
	}
	s.Errors[name] = err.Error()
}
