package goodreads

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ca-srg/goodreader/internal/types"
)

// LookupError describes a failure (or an empty outcome) of one lookup step.
type LookupError struct {
	Kind    types.ErrorKind `json:"kind"`
	Message string          `json:"message"`
	Status  int             `json:"status,omitempty"`
	URL     string          `json:"url,omitempty"`
	Cause   error           `json:"-"`
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Message
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Unwrap compatibility.
func (e *LookupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind types.ErrorKind, cause error, format string, args ...interface{}) *LookupError {
	return &LookupError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func invalidArgument(format string, args ...interface{}) *LookupError {
	return newError(types.ErrorKindInvalidArgument, nil, format, args...)
}

func parseError(cause error, format string, args ...interface{}) *LookupError {
	return newError(types.ErrorKindParse, cause, format, args...)
}

func emptyResult(format string, args ...interface{}) *LookupError {
	return newError(types.ErrorKindEmptyResult, nil, format, args...)
}

// KindOf returns the kind of the first LookupError in the chain, or "" when there is none.
func KindOf(err error) types.ErrorKind {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Kind
	}
	return ""
}

// IsKind reports whether err carries a LookupError of the given kind.
func IsKind(err error, kind types.ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsEmptyResult reports whether err only signals a zero-match outcome.
func IsEmptyResult(err error) bool {
	return IsKind(err, types.ErrorKindEmptyResult)
}

// ClassifyHTTPStatus maps a non-success status to an error. Not-found is an empty result.
func ClassifyHTTPStatus(status int, target string, body []byte) *LookupError {
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return &LookupError{
			Kind:    types.ErrorKindEmptyResult,
			Message: "nothing found",
			Status:  status,
			URL:     target,
		}
	case status == http.StatusTooManyRequests:
		return &LookupError{
			Kind:    types.ErrorKindHTTP,
			Message: "rate limited by the site, try again later",
			Status:  status,
			URL:     target,
		}
	case status == http.StatusForbidden:
		return &LookupError{
			Kind:    types.ErrorKindHTTP,
			Message: "request refused by the site",
			Status:  status,
			URL:     target,
		}
	case status >= 500:
		return &LookupError{
			Kind:    types.ErrorKindHTTP,
			Message: "site error",
			Status:  status,
			URL:     target,
		}
	default:
		return &LookupError{
			Kind:    types.ErrorKindHTTP,
			Message: fmt.Sprintf("unexpected response: %s", snippet(body, 120)),
			Status:  status,
			URL:     target,
		}
	}
}

// ClassifyTransportError wraps a failed round trip as a network error.
func ClassifyTransportError(err error, target string) *LookupError {
	message := "request failed"

	var netErr net.Error
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		message = "request cancelled"
	case errors.As(err, &dnsErr):
		message = "host not found"
	case strings.Contains(err.Error(), "connection refused"):
		message = "connection refused"
	}

	return &LookupError{
		Kind:    types.ErrorKindNetwork,
		Message: message,
		URL:     target,
		Cause:   err,
	}
}

func snippet(body []byte, limit int) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	if text == "" {
		return "empty body"
	}
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
