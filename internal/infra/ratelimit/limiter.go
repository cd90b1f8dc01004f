// Package ratelimit gates vendor API calls against one or more quota
// windows (e.g. 5/minute and 500/day). All workers share a single Limiter;
// every consumption and rollover happens under its lock.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrDailyQuotaExhausted is returned when a long window (daily cap) has no
// headroom. Callers should not retry within the run; the window will not
// roll for hours.
var ErrDailyQuotaExhausted = errors.New("daily quota exhausted")

// ErrCostExceedsLimit is returned when the requested cost is larger than a
// window's total limit; no amount of waiting can admit it.
var ErrCostExceedsLimit = errors.New("cost exceeds window limit")

// longWindowCutoff separates short windows, which Acquire waits out, from
// long windows, which surface ErrDailyQuotaExhausted instead.
const longWindowCutoff = time.Hour

// WindowConfig declares one quota window.
type WindowConfig struct {
	Name     string
	Limit    int
	Interval time.Duration
}

// window tracks consumption against one interval. Rollover is lazy: applied
// at the moment of an admission attempt, never by a background timer.
type window struct {
	name     string
	limit    int
	interval time.Duration
	consumed int
	start    time.Time
}

// rollover advances the window boundary if the interval has elapsed,
// resetting consumption. Boundaries stay aligned to the original start.
func (w *window) rollover(now time.Time) {
	if elapsed := now.Sub(w.start); elapsed >= w.interval {
		steps := elapsed / w.interval
		w.start = w.start.Add(steps * w.interval)
		w.consumed = 0
	}
}

func (w *window) headroom() int {
	return w.limit - w.consumed
}

// Limiter admits callers when every configured window has headroom.
// Admission increments all windows together; partial admission never
// happens.
type Limiter struct {
	mu      sync.Mutex
	windows []*window
	now     func() time.Time
}

// New creates a limiter over the given windows. Windows with a
// non-positive limit or interval are ignored.
func New(configs []WindowConfig) *Limiter {
	return newLimiter(configs, time.Now)
}

func newLimiter(configs []WindowConfig, now func() time.Time) *Limiter {
	l := &Limiter{now: now}
	start := now()
	for _, c := range configs {
		if c.Limit <= 0 || c.Interval <= 0 {
			continue
		}
		l.windows = append(l.windows, &window{
			name:     c.Name,
			limit:    c.Limit,
			interval: c.Interval,
			start:    start,
		})
	}
	return l
}

// TryAcquire attempts immediate admission. It never blocks; on success all
// windows are charged cost atomically.
func (l *Limiter) TryAcquire(cost int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	wait, err := l.admit(cost)
	return err == nil && wait == 0
}

// Acquire blocks until every window has headroom >= cost, then charges all
// windows. If a long window is exhausted it returns ErrDailyQuotaExhausted
// immediately; a cost no window can ever fit returns ErrCostExceedsLimit.
// Context cancellation aborts the wait.
func (l *Limiter) Acquire(ctx context.Context, cost int) error {
	for {
		l.mu.Lock()
		wait, err := l.admit(cost)
		l.mu.Unlock()
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Boundary reached, re-evaluate.
		}
	}
}

// admit rolls every window forward, then either charges all windows
// (wait=0, nil error) or reports how long to wait until the earliest
// blocking short window rolls. An exhausted long window and an
// unsatisfiable cost surface as errors instead of a wait. Caller holds mu.
func (l *Limiter) admit(cost int) (wait time.Duration, err error) {
	now := l.now()

	blocked := false
	for _, w := range l.windows {
		w.rollover(now)
		if w.headroom() >= cost {
			continue
		}
		if cost > w.limit {
			// Rollover resets to full headroom, so waiting cannot help.
			return 0, ErrCostExceedsLimit
		}
		blocked = true
		if w.interval >= longWindowCutoff {
			// Long window exhausted: report distinctly, do not wait.
			return 0, ErrDailyQuotaExhausted
		}
		until := w.start.Add(w.interval).Sub(now)
		if wait == 0 || until < wait {
			wait = until
		}
	}
	if blocked {
		return wait, nil
	}

	for _, w := range l.windows {
		w.consumed += cost
	}
	return 0, nil
}

// Status reports per-window headroom for observability.
func (l *Limiter) Status() []WindowStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]WindowStatus, 0, len(l.windows))
	for _, w := range l.windows {
		w.rollover(now)
		out = append(out, WindowStatus{
			Name:      w.name,
			Limit:     w.limit,
			Consumed:  w.consumed,
			Remaining: w.headroom(),
			ResetsAt:  w.start.Add(w.interval),
		})
	}
	return out
}

// WindowStatus is a point-in-time snapshot of one window.
type WindowStatus struct {
	Name      string
	Limit     int
	Consumed  int
	Remaining int
	ResetsAt  time.Time
}
