// internal/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failure crossing the service boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindMalformed
	KindValidation
	KindNotFound
	KindAccessDenied
	KindUnauthenticated
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Code returns the gRPC code equivalent of the kind.
func (k Kind) Code() codes.Code {
	switch k {
	case KindMalformed, KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindAccessDenied:
		return codes.PermissionDenied
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindConflict:
		return codes.FailedPrecondition
	case KindUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// Violation is a single field-level validation message.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + " " + v.Message
}

// Error is the only error type services return to their callers.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if len(e.Violations) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Messages(), "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Messages renders the violations as human-readable strings.
func (e *Error) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.String())
	}
	return out
}

// GRPCStatus lets status.FromError recognise the error.
func (e *Error) GRPCStatus() *status.Status {
	st := status.New(e.Kind.Code(), e.Message)
	if len(e.Violations) == 0 {
		return st
	}
	br := &errdetails.BadRequest{}
	for _, v := range e.Violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Message,
		})
	}
	withDetails, err := st.WithDetails(br)
	if err != nil {
		return st
	}
	return withDetails
}

// Validation builds a ValidationFailure from field violations.
func Validation(violations ...Violation) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Violations: violations}
}

// NotFound reports an absent (or not owned) resource without leaking which.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func AccessDenied() *Error {
	return &Error{Kind: KindAccessDenied, Message: "access denied"}
}

func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Conflict reports a business-rule refusal such as a guarded delete.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Malformed(msg string) *Error {
	return &Error{Kind: KindMalformed, Message: msg}
}

func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "health check failed", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, treating foreign errors as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// From converts any error into an *Error, wrapping unknown ones as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
