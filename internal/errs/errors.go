// Package errs provides the unified error type used across all of duckgate.
//
// Every subsystem (database drivers, schema, session, gateway, filestore)
// wraps its native errors into *errs.Error before returning them. The HTTP
// layer turns any error into the response envelope via HTTPStatus and Public
// without importing driver-specific packages.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindExecution, "statement failed", pgErr)
//
//	// In a handler, check the error kind:
//	if errs.IsUnauthenticated(err) {
//	    w.WriteHeader(http.StatusUnauthorized)
//	}
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrKind categorises an error without exposing engine-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindUnauthenticated          // missing, malformed or unknown bearer token
	ErrKindValidation               // invalid identifier, empty body, missing field
	ErrKindNotConnected             // token valid but no live pool behind it
	ErrKindExecution                // engine rejected the statement
	ErrKindIntrospection            // catalog query failed
	ErrKindConnectionFailed         // cannot reach or authenticate to the engine
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConflict                 // unique / foreign-key constraint violation
	ErrKindUnavailable              // optional subsystem not configured
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindUnauthenticated:
		return "unauthenticated"
	case ErrKindValidation:
		return "validation"
	case ErrKindNotConnected:
		return "not_connected"
	case ErrKindExecution:
		return "execution"
	case ErrKindIntrospection:
		return "introspection"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConflict:
		return "conflict"
	case ErrKindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all duckgate subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Rekind re-labels err with kind while keeping its message and cause.
// Used when a generic driver failure gains meaning from its call site,
// e.g. a query failure inside the introspector becomes ErrKindIntrospection.
// Timeouts and connection failures keep their kind.
func Rekind(err error, kind ErrKind) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return Wrap(kind, "operation failed", err)
	}
	switch e.Kind {
	case ErrKindTimeout, ErrKindConnectionFailed, ErrKindConflict:
		return e
	}
	return &Error{Kind: kind, Message: e.Message, Cause: e.Cause}
}

// --- Predicates ---

// IsUnauthenticated reports whether err is a bearer-token failure.
func IsUnauthenticated(err error) bool {
	return kindOf(err) == ErrKindUnauthenticated
}

// IsValidation reports whether err was caused by bad input from the caller.
func IsValidation(err error) bool {
	return kindOf(err) == ErrKindValidation
}

// IsNotConnected reports whether err means the session has no live pool.
func IsNotConnected(err error) bool {
	return kindOf(err) == ErrKindNotConnected
}

// IsExecution reports whether the engine rejected a statement.
func IsExecution(err error) bool {
	return kindOf(err) == ErrKindExecution
}

// IsIntrospection reports whether a catalog query failed.
func IsIntrospection(err error) bool {
	return kindOf(err) == ErrKindIntrospection
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsConflict reports whether err is a constraint violation.
func IsConflict(err error) bool {
	return kindOf(err) == ErrKindConflict
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	return kindOf(err)
}

func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// --- HTTP mapping ---

// HTTPStatus maps err to the status code written alongside the envelope.
func HTTPStatus(err error) int {
	switch kindOf(err) {
	case ErrKindUnauthenticated:
		return http.StatusUnauthorized
	case ErrKindValidation:
		return http.StatusBadRequest
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindConflict, ErrKindNotConnected:
		return http.StatusConflict
	case ErrKindConnectionFailed:
		return http.StatusBadGateway
	case ErrKindTimeout:
		return http.StatusGatewayTimeout
	case ErrKindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the text placed in the envelope's error field.
// Engine-side failures carry the driver message verbatim; everything else
// returns only the message so internal causes stay out of responses.
func Public(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case ErrKindExecution, ErrKindIntrospection, ErrKindConnectionFailed, ErrKindConflict, ErrKindTimeout:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
	}
	return e.Message
}
