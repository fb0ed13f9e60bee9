// Package httperr defines the error taxonomy shared by all handlers and the
// single point where errors are serialized into HTTP responses.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies an error into its HTTP-status category.
type Kind int

const (
	// KindBadRequest covers malformed client input: bad header encoding,
	// oversized body, invalid JSON values.
	KindBadRequest Kind = iota
	// KindUnauthorized covers authentication failures. Messages within this
	// kind are deliberately generic.
	KindUnauthorized
	// KindForbidden covers authenticated but unauthorized access.
	KindForbidden
	// KindNotFound covers absent entities where confirming existence is not
	// sensitive.
	KindNotFound
	// KindConflict covers uniqueness violations and self-deletion.
	KindConflict
	// KindInternal covers storage, crypto, and other server-side failures.
	// Detail is logged; callers only ever see "internal server error".
	KindInternal
)

// Error is a categorized, caller-visible error. Message is what the caller
// may see; Err carries server-side detail for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest builds a KindBadRequest error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a KindConflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps a server-side failure. The wrapped error is logged, never
// sent to the caller.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// Write serializes err as a JSON error response. This is the redaction
// boundary: internal errors are logged with full detail and the caller
// receives only the generic message. Errors that are not *Error are treated
// as internal.
func Write(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	status := appErr.Status()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		message = "internal server error"
		if logger != nil {
			logger.Error("request failed", "error", appErr.Error())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(map[string]string{"error": message})
	if encErr != nil {
		// Response already started, nothing we can do
		_ = encErr
	}
}
