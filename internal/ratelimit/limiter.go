// Package ratelimit gates keyed callers with a sliding-window count over a
// shared counter store.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/invite-sh/server/internal/model"
)

// Limiter evaluates the configured policy (limit requests per window) against
// a WindowedCounter. The counter, not the Limiter, holds all mutable state.
type Limiter struct {
	counter  WindowedCounter
	limit    int
	window   time.Duration
	failOpen bool
	now      func() time.Time
}

func NewLimiter(counter WindowedCounter, limit int, window time.Duration, failOpen bool) *Limiter {
	return &Limiter{
		counter:  counter,
		limit:    limit,
		window:   window,
		failOpen: failOpen,
		now:      time.Now,
	}
}

// Key derives the counter key for a scope and caller-identifying token. An
// absent token still yields a deterministic, coarser key.
func Key(scope, clientKey string) string {
	if clientKey == "" {
		clientKey = "unknown"
	}
	return scope + "_" + clientKey
}

// Check records the current request and decides whether it may proceed. When
// the counter store is unreachable the configured policy applies: fail-open
// admits, fail-closed rejects; the check is never silently skipped.
func (l *Limiter) Check(ctx context.Context, scope, clientKey string) model.RateLimitDecision {
	now := l.now()
	count, oldest, err := l.counter.Hit(ctx, Key(scope, clientKey), now, l.window)
	if err != nil {
		log.Error().Err(err).
			Str("scope", scope).
			Bool("fail_open", l.failOpen).
			Msg("counter store unreachable; applying failure policy")
		return model.RateLimitDecision{
			Allowed:   l.failOpen,
			Limit:     l.limit,
			Remaining: 0,
			ResetAt:   now.Add(l.window),
		}
	}

	d := model.RateLimitDecision{
		Limit:   l.limit,
		ResetAt: oldest.Add(l.window),
	}
	if count > int64(l.limit) {
		d.Allowed = false
		d.Remaining = 0
		return d
	}
	d.Allowed = true
	d.Remaining = l.limit - int(count)
	return d
}
