package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable failure category. Kinds survive across
// the service boundary unchanged; handlers map them to HTTP statuses and
// clients match on them.
type Kind string

const (
	KindMissingField        Kind = "missing_field"
	KindEmptyField          Kind = "empty_field"
	KindInvalidDuration     Kind = "invalid_duration"
	KindDurationUnavailable Kind = "duration_unavailable"
	KindMissingDuration     Kind = "missing_duration"
	KindInvalidStatus       Kind = "invalid_status"
	KindNotFound            Kind = "not_found"
	KindInvalidEnum         Kind = "invalid_enum"
	KindStoreFailure        Kind = "store_failure"
)

type Error struct {
	Kind  Kind
	Field string // offending field or entity name, when known
	Index int    // batch item position, -1 outside a batch
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s", e.Index, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, field string, err error) *Error {
	return &Error{Kind: kind, Field: field, Index: -1, Err: err}
}

func Newf(kind Kind, field, format string, args ...interface{}) *Error {
	return New(kind, field, fmt.Errorf(format, args...))
}

func Missing(field string) *Error {
	return Newf(KindMissingField, field, "missing required field %q", field)
}

func Empty(field string) *Error {
	return Newf(KindEmptyField, field, "field %q cannot be empty", field)
}

func NotFound(entity string, id interface{}) *Error {
	return Newf(KindNotFound, entity, "%s with ID %v not found", entity, id)
}

func Store(err error) *Error {
	return New(KindStoreFailure, "", err)
}

// AtIndex tags err with a batch position. Non-apperr errors are treated as
// store failures, since by this point validation kinds have already been
// assigned.
func AtIndex(err error, index int) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Kind: ae.Kind, Field: ae.Field, Index: index, Err: ae.Err}
	}
	return &Error{Kind: KindStoreFailure, Index: index, Err: err}
}

// KindOf extracts the failure kind, defaulting to store_failure for plain
// errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStoreFailure
}

func IndexOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Index
	}
	return -1
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingField, KindEmptyField, KindInvalidDuration,
		KindMissingDuration, KindInvalidStatus, KindInvalidEnum:
		return http.StatusBadRequest
	case KindDurationUnavailable:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
