package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// CounterStore is a fixed-window counter. The in-memory store serves a
// single instance; the Redis store gives shared counters across instances.
// Either way the limiter is an abuse deterrent, not strict quota
// enforcement: increments are not atomic with the allow decision.
type CounterStore interface {
	// Incr bumps the counter for key, creating it with the given TTL, and
	// returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Limiter applies two fixed counting windows per client identifier.
type Limiter struct {
	store     CounterStore
	perMinute int
	perHour   int
	now       func() time.Time
}

func NewLimiter(store CounterStore, perMinute, perHour int) *Limiter {
	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perHour:   perHour,
		now:       time.Now,
	}
}

// Allow reports whether the identifier may proceed. Errors from the counter
// store fail open: a broken Redis should not take the endpoint down.
func (l *Limiter) Allow(ctx context.Context, identifier string) bool {
	now := l.now()

	minuteKey := windowKey(identifier, "m", now.Unix()/60)
	hourKey := windowKey(identifier, "h", now.Unix()/3600)

	minuteCount, err := l.store.Incr(ctx, minuteKey, time.Minute)
	if err != nil {
		return true
	}
	hourCount, err := l.store.Incr(ctx, hourKey, time.Hour)
	if err != nil {
		return true
	}

	return minuteCount <= int64(l.perMinute) && hourCount <= int64(l.perHour)
}

func windowKey(identifier, unit string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", identifier, unit, window)
}
