package services

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies service failures; handlers map each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindRelatedMissing
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindRelatedMissing:
		return "related_missing"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails.
// Details is safe to show to callers; Err and Stack are diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
	Stack   string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a service error, treating anything else as internal.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError("Internal server error", err)
}

var errUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "Unauthorized"}

func validationError(msg string, details any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err, Stack: string(debug.Stack())}
}

// persistenceError maps constraint violations to the caller-facing taxonomy.
// Anything unrecognised becomes an internal failure carrying msg.
func persistenceError(msg string, err error) *Error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "Duplicate entry found", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindRelatedMissing, Message: "Related record not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		details := map[string]string{"constraint": pgErr.ConstraintName, "table": pgErr.TableName}
		switch pgErr.Code {
		case "23505":
			return &Error{Kind: KindConflict, Message: "Duplicate entry found", Details: details, Err: err}
		case "23503":
			return &Error{Kind: KindRelatedMissing, Message: "Related record not found", Details: details, Err: err}
		}
	}
	return internalError(msg, err)
}
