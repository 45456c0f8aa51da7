// Package apierr is the typed error decoded once at the backend HTTP boundary.
// Callers switch on Kind instead of probing response shapes.
package apierr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindTransport: the request never produced an HTTP response (DNS, timeout, reset).
	KindTransport Kind = iota + 1
	// KindBackend: the backend answered and declared a failure.
	KindBackend
	// KindDecode: the backend answered with a body we could not understand.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBackend:
		return "backend"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	// Op names the backend call, e.g. "GET /search".
	Op     string
	Status int
	Code   string
	// Reason is the backend-declared reason, if any. It is diagnostic text and must be
	// sanitized before it is shown to a user.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Kind == KindBackend && e.Reason != "":
		return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Status, e.Reason)
	case e.Kind == KindBackend:
		return fmt.Sprintf("%s: backend status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func Backend(op string, status int, code, reason string) *Error {
	return &Error{Kind: KindBackend, Op: op, Status: status, Code: code, Reason: reason}
}

func Decode(op string, status int, err error) *Error {
	return &Error{Kind: KindDecode, Op: op, Status: status, Err: err}
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if ae, ok := As(err); ok {
		return ae.Status
	}
	return 0
}

// ReasonOf returns the backend reason carried by err, or "".
func ReasonOf(err error) string {
	if ae, ok := As(err); ok {
		return ae.Reason
	}
	return ""
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	ae, ok := As(err)
	return ok && ae.Kind == KindTransport
}

// IsStatus reports whether err is a backend failure with the given status.
func IsStatus(err error, status int) bool {
	ae, ok := As(err)
	return ok && ae.Kind == KindBackend && ae.Status == status
}
