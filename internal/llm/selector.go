package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Selector resolves a working provider from an ordered candidate list and
// caches the choice until it expires. It is injected wherever a Client is
// needed, so provider selection stays visible and testable.
type Selector struct {
	candidates []Client
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	cached    Client
	expiresAt time.Time
}

func NewSelector(candidates []Client, ttl time.Duration) *Selector {
	return &Selector{
		candidates: candidates,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Resolve returns the cached provider while it is fresh, otherwise pings the
// candidates in order and caches the first that answers.
func (s *Selector) Resolve(ctx context.Context) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Before(s.expiresAt) {
		return s.cached, nil
	}

	var lastErr error
	for i, candidate := range s.candidates {
		if err := candidate.Ping(ctx); err != nil {
			slog.Warn("LLM provider unavailable", "index", i, "error", err)
			lastErr = err
			continue
		}
		s.cached = candidate
		s.expiresAt = s.now().Add(s.ttl)
		return candidate, nil
	}

	s.cached = nil
	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return nil, fmt.Errorf("resolve llm provider: %w", lastErr)
}
