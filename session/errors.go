package session

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes what went wrong. It mirrors the taxonomy a
// caller needs to decide whether to retry, reconnect, or give up:
// transport and command failures are often retryable, a malformed
// frame rarely indicates anything the caller can fix by retrying, and
// a lifecycle error means the session itself is no longer usable.
type ErrorKind int

const (
	// KindTransport covers dial, read, and write failures below the
	// frame layer.
	KindTransport ErrorKind = iota
	// KindProtocolMalformed covers unknown response codes, short
	// payloads, and other frame-level decode failures.
	KindProtocolMalformed
	// KindCommand covers a solicited command that the radio answered
	// with an error response, or that timed out waiting for any reply.
	KindCommand
	// KindAck covers a message accepted by the radio (messageSent) that
	// never received its matching ack push before the ack deadline.
	KindAck
	// KindLifecycle covers misuse of the session state machine: sending
	// before Start, sending after Close, starting twice.
	KindLifecycle
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocolMalformed:
		return "protocol malformed"
	case KindCommand:
		return "command"
	case KindAck:
		return "ack"
	case KindLifecycle:
		return "lifecycle"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is the single error type this package returns. Callers branch
// on Kind (or use the Is* helpers) rather than string-matching.
type Error struct {
	Kind      ErrorKind
	Message   string
	Err       error // wrapped cause, if any
	Retryable bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newTransportError(message string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: cause, Retryable: true}
}

func newProtocolError(message string) *Error {
	return &Error{Kind: KindProtocolMalformed, Message: message, Retryable: false}
}

func newCommandError(message string, cause error) *Error {
	return &Error{Kind: KindCommand, Message: message, Err: cause, Retryable: true}
}

func newAckError(message string) *Error {
	return &Error{Kind: KindAck, Message: message, Retryable: true}
}

func newLifecycleError(message string) *Error {
	return &Error{Kind: KindLifecycle, Message: message, Retryable: false}
}

// IsTransport reports whether err is a transport-kind Error.
func IsTransport(err error) bool { return kindOf(err) == KindTransport }

// IsProtocolMalformed reports whether err is a protocol-malformed Error.
func IsProtocolMalformed(err error) bool { return kindOf(err) == KindProtocolMalformed }

// IsCommand reports whether err is a command-kind Error.
func IsCommand(err error) bool { return kindOf(err) == KindCommand }

// IsAck reports whether err is an ack-kind Error.
func IsAck(err error) bool { return kindOf(err) == KindAck }

// IsLifecycle reports whether err is a lifecycle-kind Error.
func IsLifecycle(err error) bool { return kindOf(err) == KindLifecycle }

// IsRetryable reports whether err (if a session Error) is safe to
// retry. Non-session errors are treated as not retryable.
func IsRetryable(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Retryable
}

func kindOf(err error) ErrorKind {
	var se *Error
	if !errors.As(err, &se) {
		return -1
	}
	return se.Kind
}
