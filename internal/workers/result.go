// Package workers implements the authenticated resource workers: CRUD over
// task-list and task records scoped to a verified owner identity, persisted
// through an ordered key-value store.
//
// Workers are stateless and safe to share across concurrent requests; the
// store is the only shared mutable resource.
package workers

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of a worker operation. The transport layer
// maps codes to protocol responses; workers never translate them further.
type Code string

const (
	CodeSuccess         Code = "success"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeInvalidArgument Code = "invalid_argument"
	CodeStoreError      Code = "store_error"
)

// Error is a classified worker failure.
type Error struct {
	Code   Code
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the classification of err. A nil error is CodeSuccess;
// an unclassified error is treated as a store failure.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return CodeStoreError
}

func notFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Detail: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Code: CodeConflict, Detail: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Detail: fmt.Sprintf(format, args...)}
}

func storeError(cause error, format string, args ...any) error {
	return &Error{Code: CodeStoreError, Detail: fmt.Sprintf(format, args...), cause: cause}
}
