// Package corerr defines the sealed error-kind vocabulary shared by the
// components of this module (transports, oauth, dxt, client; jsonschema
// reports its failures without it),
// realizing spec §7's error taxonomy as a single CoreError sum type so a
// caller can `errors.As` once regardless of which subsystem failed.
//
// It is grounded on the teacher's unauthorized.go pattern
// (UnauthorizedError + IsUnauthorized using errors.As), generalized from one
// fixed HTTP concern to the full per-component kind vocabulary.
package corerr

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds enumerated in spec §7. It is a string
// rather than an int so that log output and test assertions read directly
// off the wire vocabulary the spec defines.
type Kind string

const (
	KindNotConnected             Kind = "not-connected"
	KindNotStarted               Kind = "not-started"
	KindCapabilityNotSupported   Kind = "capability-not-supported"
	KindRequestFailed            Kind = "request-failed"
	KindRequestInvalidResponse   Kind = "request-invalid-response"
	KindRequestTimedOut          Kind = "request-timed-out"
	KindRequestCancelled         Kind = "request-cancelled"
	KindNoPendingRequest         Kind = "no-pending-request"
	KindUnsupportedNotification  Kind = "unsupported-notification"
	KindUnexpectedRequestType    Kind = "unexpected-request-type"
	KindTransportIO              Kind = "transport-io"
	KindEmbeddedNewlines         Kind = "embedded-newlines"
	KindBufferLimitExceeded      Kind = "buffer-limit-exceeded"
	KindServerClosedOutputStream Kind = "server-closed-output-stream"
	KindInvalidSessionID         Kind = "invalid-session-id"
	KindInvalidServerURL         Kind = "invalid-server-url"
	KindInvalidResponse          Kind = "invalid-response"
	KindMissingContentType       Kind = "missing-content-type"
	KindInvalidContentType       Kind = "invalid-content-type"
	KindServerHTTPError          Kind = "server-http-error"
	KindSSEInvalidEventType      Kind = "sse-invalid-event-type"
	KindSSEInvalidEndpoint       Kind = "sse-invalid-endpoint"
	KindSSENotSupported          Kind = "sse-not-supported"
	KindSSEUnexpectedEvent       Kind = "sse-unexpected-event"
	KindReconnectionFailed       Kind = "reconnection-failed"
	KindAuthenticationRequired   Kind = "authentication-required"
	KindOAuth                    Kind = "oauth"
	KindSchema                   Kind = "schema"
	KindDXT                      Kind = "dxt"
)

// CoreError is the single sealed error type every component returns.
// Component-specific detail that does not fit the common fields is carried
// in Data.
type CoreError struct {
	Kind        Kind
	Component   string // "stdio", "streamable", "oauth", "dxt", "client"
	Message     string
	StatusCode  int    // HTTP status, when applicable
	ResourceURL string // e.g. OAuth protected-resource metadata URL
	Data        interface{}
	Err         error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, &CoreError{Kind: KindRequestTimedOut}) style
// matching on Kind alone.
func (e *CoreError) Is(target error) bool {
	var other *CoreError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs a CoreError with no wrapped cause.
func New(kind Kind, component, message string) *CoreError {
	return &CoreError{Kind: kind, Component: component, Message: message}
}

// Wrap constructs a CoreError wrapping an underlying cause.
func Wrap(kind Kind, component, message string, err error) *CoreError {
	return &CoreError{Kind: kind, Component: component, Message: message, Err: err}
}

// HasKind reports whether err is (or wraps) a CoreError of the given kind.
func HasKind(err error, kind Kind) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
