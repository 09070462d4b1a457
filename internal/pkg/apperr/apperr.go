// Package apperr defines the error kinds shared by the report and dashboard
// pipelines. Human-readable text is produced at the HTTP boundary only.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a closed set of failure classes.
type Kind string

const (
	// KindPreconditionFailed marks missing or invalid caller input.
	KindPreconditionFailed Kind = "precondition_failed"
	// KindFetchFailed marks a record store that was unreachable or rejected a query.
	KindFetchFailed Kind = "fetch_failed"
	// KindDegraded marks optional data that could not be resolved.
	KindDegraded Kind = "degraded"
	// KindNotFound marks a single-entity lookup miss.
	KindNotFound Kind = "not_found"
)

// Error carries a Kind plus the operation or field it concerns.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// PreconditionFailed reports a missing or invalid input field.
func PreconditionFailed(field string) *Error {
	return &Error{Kind: KindPreconditionFailed, Field: field}
}

// Invalid reports an input field that is present but unacceptable.
func Invalid(field string, reason error) *Error {
	return &Error{Kind: KindPreconditionFailed, Field: field, Err: reason}
}

// FetchFailed wraps a record store failure with the operation being attempted.
func FetchFailed(op string, cause error) *Error {
	return &Error{Kind: KindFetchFailed, Op: op, Err: cause}
}

// Degraded wraps a failure that only removed optional data.
func Degraded(op string, cause error) *Error {
	return &Error{Kind: KindDegraded, Op: op, Err: cause}
}

// NotFound reports a missing entity.
func NotFound(op string) *Error {
	return &Error{Kind: KindNotFound, Op: op}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FieldOf returns the offending field of a precondition failure.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
