// Package retry executes operations with classification-driven exponential
// backoff. Only transient failures are retried; quota and fatal failures
// propagate immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// FailureKind classifies a failed attempt.
type FailureKind int

const (
	// Transient covers timeouts, 5xx responses and short-window throttle
	// signals. Retried with backoff.
	Transient FailureKind = iota
	// QuotaExceeded means a long-window cap (daily/monthly) is exhausted.
	// Not retried within the run.
	QuotaExceeded
	// Fatal covers auth errors, malformed requests and unknown symbols.
	Fatal
)

func (k FailureKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case QuotaExceeded:
		return "quota_exceeded"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Classifier maps an operation error to a FailureKind.
type Classifier func(error) FailureKind

// Policy controls attempt count and delay growth.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultPolicy provides sensible defaults for vendor APIs.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    30 * time.Second,
	Jitter:      true,
}

// Attempt records one failed try for diagnostics.
type Attempt struct {
	Number int
	Cause  FailureKind
	Delay  time.Duration
}

// ExhaustedError is returned when every attempt failed transiently. It
// carries the full attempt trace.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted after %d attempts: %v", len(e.Attempts), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Backoff computes the pre-jitter delay before attempt n (1-indexed; the
// first retry is attempt 2). Pure function, decoupled from sleeping.
func Backoff(attempt int, p Policy) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-2))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Executor wraps operations with retry bookkeeping.
type Executor struct {
	policy   Policy
	classify Classifier
	sleep    func(context.Context, time.Duration) error
	randFn   func(int64) int64
}

// NewExecutor creates an executor. classify must not be nil.
func NewExecutor(policy Policy, classify Classifier) *Executor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	return &Executor{
		policy:   policy,
		classify: classify,
		sleep:    sleepCtx,
		randFn:   rand.Int63n,
	}
}

// Execute runs op until it succeeds, fails non-transiently, or the attempt
// budget is spent. Full jitter: the applied delay is uniform in
// [0, Backoff(n)].
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	var attempts []Attempt
	var lastErr error

	for n := 1; n <= e.policy.MaxAttempts; n++ {
		if n > 1 {
			delay := Backoff(n, e.policy)
			if e.policy.Jitter && delay > 0 {
				delay = time.Duration(e.randFn(int64(delay) + 1))
			}
			attempts[len(attempts)-1].Delay = delay
			if err := e.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		kind := e.classify(err)
		attempts = append(attempts, Attempt{Number: n, Cause: kind})
		if kind != Transient {
			return err
		}
	}

	return &ExhaustedError{Attempts: attempts, Last: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsExhausted reports whether err is a retry exhaustion.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
