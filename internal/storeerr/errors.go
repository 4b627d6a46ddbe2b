// Package storeerr defines the failure classes shared by the blob and
// metadata adapters. Adapters wrap provider failures in *Error so callers can
// select a class with errors.Is while diagnostics keep the operation, the
// target and the underlying cause.
package storeerr

import (
	"errors"
	"net/http"
)

var (
	// ErrNamingConflict indicates a bucket name was rejected or is already taken.
	ErrNamingConflict = errors.New("naming conflict")
	// ErrNotFound indicates the referenced bucket or object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNonEmptyContainer is returned when deleting a bucket that still holds objects.
	ErrNonEmptyContainer = errors.New("bucket not empty")
	// ErrLocalIO signals an unreadable upload source or unwritable download target.
	ErrLocalIO = errors.New("local i/o failure")
	// ErrProvider covers managed-service failures not classified above.
	ErrProvider = errors.New("provider failure")
	// ErrValidation flags an empty search key or a malformed ingestion entry.
	ErrValidation = errors.New("validation failed")
)

// Error ties a failure class to the operation and target it happened on.
type Error struct {
	Kind   error
	Op     string
	Target string
	Err    error
}

// New builds an *Error. A nil cause is allowed for failures detected locally.
func New(kind error, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the class and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation is shorthand for a locally detected validation failure.
func Validation(op, target, reason string) *Error {
	return New(ErrValidation, op, target, errors.New(reason))
}

// KindOf returns the failure class of err, or nil when err is not classified.
func KindOf(err error) error {
	for _, kind := range []error{ErrNamingConflict, ErrNotFound, ErrNonEmptyContainer, ErrLocalIO, ErrValidation, ErrProvider} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Label is a short stable name for a failure class, used in metrics and API responses.
func Label(err error) string {
	switch KindOf(err) {
	case nil:
		if err == nil {
			return "ok"
		}
		return "unclassified"
	case ErrNamingConflict:
		return "naming_conflict"
	case ErrNotFound:
		return "not_found"
	case ErrNonEmptyContainer:
		return "non_empty_container"
	case ErrLocalIO:
		return "local_io"
	case ErrValidation:
		return "validation"
	default:
		return "provider"
	}
}

// HTTPStatus maps a failure class to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrNamingConflict, ErrNonEmptyContainer:
		return http.StatusConflict
	case ErrNotFound:
		return http.StatusNotFound
	case ErrLocalIO:
		return http.StatusUnprocessableEntity
	case ErrValidation:
		return http.StatusBadRequest
	case ErrProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
