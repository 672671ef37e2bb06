package core

// scheduler.go evicts idle sessions. Loaded datasets live only in memory,
// so a session that nobody touches for SessionTTL is dropped.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultJanitorInterval is used when StartSessionJanitor gets a
// non-positive interval.
const DefaultJanitorInterval = time.Minute

// StartSessionJanitor evicts idle sessions every interval until ctx is
// cancelled. It returns immediately when no SessionTTL is configured.
func (s *Service) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	if s.opts.SessionTTL <= 0 {
		slog.Info("session janitor disabled", "reason", "no session ttl")
		return
	}
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	slog.Info("session janitor started",
		"ttl", s.opts.SessionTTL.String(),
		"interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case now := <-ticker.C:
			if n := s.EvictIdle(now.Add(-s.opts.SessionTTL)); n > 0 {
				slog.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// EvictIdle drops every session last used before cutoff and returns how
// many were dropped.
func (s *Service) EvictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
