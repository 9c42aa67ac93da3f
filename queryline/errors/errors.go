package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnknownField Kind = "unknown_field"
	KindOperator     Kind = "operator"
	KindSession      Kind = "session"
	KindSQL          Kind = "sql"
	KindIO           Kind = "io"
)

// Error is the engine's structured error. Field names the offending filter
// field for validation errors so callers can render inline messages.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func UnknownField(field string) *Error {
	return &Error{Kind: KindUnknownField, Message: "unknown field", Field: field}
}

func IllegalOperator(field, op string) *Error {
	return &Error{Kind: KindOperator, Field: field, Message: fmt.Sprintf("operator %q is not valid for this field", op)}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
