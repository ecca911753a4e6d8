// Package resilience provides call throttling and retry primitives shared by
// every outbound API client.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// WindowLimiter admits at most maxCalls calls within any rolling window of
// the configured period. It keeps an ordered log of admission timestamps,
// prunes entries older than the period before each admission, and blocks the
// caller until the oldest entry leaves the window when the quota is full.
// Safe for concurrent use by the enrichment workers.
type WindowLimiter struct {
	mu       sync.Mutex
	maxCalls int
	period   time.Duration
	calls    []time.Time

	now func() time.Time
}

// NewWindowLimiter creates a limiter admitting maxCalls per period.
func NewWindowLimiter(maxCalls int, period time.Duration) *WindowLimiter {
	if maxCalls < 1 {
		maxCalls = 1
	}
	if period <= 0 {
		period = time.Second
	}
	return &WindowLimiter{
		maxCalls: maxCalls,
		period:   period,
		now:      time.Now,
	}
}

// Wait blocks until the call may proceed under the window quota, then records
// its admission timestamp. It may block for up to one full period. Context
// cancellation aborts the wait without consuming quota.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.calls) < l.maxCalls {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}

		// Quota full: sleep until the oldest admission exits the window,
		// then re-check. Another worker may win the freed slot.
		wait := l.calls[0].Add(l.period).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return eris.Wrap(ctx.Err(), "resilience: rate limit wait")
		case <-timer.C:
		}
	}
}

// Pending reports the number of admissions currently inside the window.
func (l *WindowLimiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.calls)
}

// prune drops timestamps older than one period. Caller holds l.mu.
func (l *WindowLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.period)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}
