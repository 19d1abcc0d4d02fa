package relay

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	ErrorUpstream         ErrorCode = "UPSTREAM_ERROR"
	ErrorParse            ErrorCode = "PARSE_ERROR"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error is the server-side record of a failed relay step. It is logged, never
// returned to the caller.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("relay: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("relay: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// malformedResponder is implemented by upstream errors raised when a 2xx body
// does not match the expected schema.
type malformedResponder interface {
	MalformedResponse() bool
}

// notFounder is implemented by lookup errors meaning "no such passage".
type notFounder interface {
	NotFound() bool
}
