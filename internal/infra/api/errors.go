package api

import (
	"context"
	"errors"
	"net"

	"github.com/vietddude/collector/internal/infra/ratelimit"
	"github.com/vietddude/collector/internal/infra/retry"
)

// Error is the normalized form of any transport or vendor failure. The
// client maps HTTP status codes, vendor throttle payloads and malformed
// bodies into this one shape before the retry layer sees them.
type Error struct {
	Kind   retry.FailureKind
	Op     string // endpoint or phase, e.g. "daily"
	Symbol string
	Status int // HTTP status, 0 when not applicable
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "api: " + e.Msg + ": " + e.Err.Error()
	}
	return "api: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func transient(op, symbol string, status int, msg string, err error) *Error {
	return &Error{Kind: retry.Transient, Op: op, Symbol: symbol, Status: status, Msg: msg, Err: err}
}

func fatal(op, symbol string, status int, msg string, err error) *Error {
	return &Error{Kind: retry.Fatal, Op: op, Symbol: symbol, Status: status, Msg: msg, Err: err}
}

func quotaExceeded(op, symbol, msg string, err error) *Error {
	return &Error{Kind: retry.QuotaExceeded, Op: op, Symbol: symbol, Msg: msg, Err: err}
}

// Classify maps an error to the shared failure taxonomy. Unknown errors
// default to transient, matching how network-layer failures surface as
// plain errors.
func Classify(err error) retry.FailureKind {
	if err == nil {
		return retry.Transient
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	if errors.Is(err, ratelimit.ErrDailyQuotaExhausted) {
		return retry.QuotaExceeded
	}
	if errors.Is(err, context.Canceled) {
		return retry.Fatal
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retry.Transient
	}

	return retry.Transient
}
