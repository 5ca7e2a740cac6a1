// Package maperr defines the closed error taxonomy of the mapping service and
// maps transport and provider failures onto it.
//
// Every error leaving the mapping packages is a *Error. The Message is safe to
// show to upstream callers; the underlying cause is only reachable through
// Unwrap and is included in structured logs.
package maperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/rs/zerolog"
)

// Code is a stable, closed identifier for a class of mapping failure.
type Code string

const (
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"
	CodeTimeout            Code = "TIMEOUT_ERROR"
	CodeAddressNotFound    Code = "ADDRESS_NOT_FOUND"
	CodeNoRouteFound       Code = "NO_ROUTE_FOUND"
	CodeInvalidWaypoints   Code = "INVALID_WAYPOINTS"
	CodeTooManyWaypoints   Code = "TOO_MANY_WAYPOINTS"
	CodeInvalidCoordinates Code = "INVALID_COORDINATES"
	CodeUnknown            Code = "UNKNOWN_ERROR"
)

// Sentinel errors, one per code. Compare with errors.Is; matching is by code.
var (
	ErrInvalidToken       = &Error{Code: CodeInvalidToken, Message: "mapping access token is missing or invalid"}
	ErrRateLimitExceeded  = &Error{Code: CodeRateLimitExceeded, Message: "mapping provider rate limit exceeded"}
	ErrServiceUnavailable = &Error{Code: CodeServiceUnavailable, Message: "mapping provider is temporarily unavailable"}
	ErrNetwork            = &Error{Code: CodeNetworkError, Message: "could not reach the mapping provider"}
	ErrTimeout            = &Error{Code: CodeTimeout, Message: "mapping provider request timed out"}
	ErrAddressNotFound    = &Error{Code: CodeAddressNotFound, Message: "no address found for the given position"}
	ErrNoRouteFound       = &Error{Code: CodeNoRouteFound, Message: "no route found between the given waypoints"}
	ErrInvalidWaypoints   = &Error{Code: CodeInvalidWaypoints, Message: "at least two waypoints are required"}
	ErrTooManyWaypoints   = &Error{Code: CodeTooManyWaypoints, Message: "too many waypoints"}
	ErrInvalidCoordinates = &Error{Code: CodeInvalidCoordinates, Message: "invalid coordinates"}
	ErrUnknown            = &Error{Code: CodeUnknown, Message: "unexpected mapping error"}
)

// Error is the single error type returned by the mapping service.
type Error struct {
	Code    Code   // Stable classification
	Message string // Human-readable, safe for upstream callers
	Err     error  // Underlying cause, never rendered by Error()
}

// Error renders the code and message. The cause is deliberately omitted.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// MarshalZerologObject logs code, message and, unlike Error, the cause.
func (e *Error) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("code", string(e.Code)).Str("message", e.Message)
	if e.Err != nil {
		ev.Str("cause", e.Err.Error())
	}
}

// New creates an error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error carrying cause for logging.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the code of err, or CodeUnknown when err is not a *Error.
// It returns the empty code for a nil error.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr.Code
	}
	return CodeUnknown
}

// Retryable reports whether err is a transient failure a caller may retry.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeRateLimitExceeded, CodeServiceUnavailable, CodeNetworkError, CodeTimeout:
		return true
	default:
		return false
	}
}

// FromStatus maps a non-success HTTP status from the provider. providerMessage
// is whatever the provider put in its error body and is kept as the cause.
func FromStatus(status int, providerMessage, op string) *Error {
	cause := fmt.Errorf("%s: provider returned status %d: %s", op, status, providerMessage)

	switch status {
	case http.StatusUnauthorized:
		return Wrap(CodeInvalidToken, ErrInvalidToken.Message, cause)
	case http.StatusTooManyRequests:
		return Wrap(CodeRateLimitExceeded, ErrRateLimitExceeded.Message, cause)
	case http.StatusServiceUnavailable:
		return Wrap(CodeServiceUnavailable, ErrServiceUnavailable.Message, cause)
	default:
		return Wrap(CodeUnknown, op+" failed", cause)
	}
}

// FromTransport maps an error raised while sending a request or reading its
// response. Errors that are already a *Error pass through unchanged.
func FromTransport(err error, op string) *Error {
	if err == nil {
		return nil
	}

	var mErr *Error
	if errors.As(err, &mErr) {
		return mErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return Wrap(CodeTimeout, ErrTimeout.Message, err)
	case isNetwork(err):
		return Wrap(CodeNetworkError, ErrNetwork.Message, err)
	case errors.Is(err, context.Canceled):
		return Wrap(CodeUnknown, op+" was canceled", err)
	default:
		return Wrap(CodeUnknown, op+" failed", err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
