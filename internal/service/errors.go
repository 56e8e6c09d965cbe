package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 400
	ErrInvalidTransition = errors.New("invalid transition") // 422
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrUnavailable       = errors.New("unavailable")        // 400
	ErrTooManyRequests   = errors.New("too many requests")  // 429
)

// Error carries a client-facing detail next to one of the sentinel kinds.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Detail returns the client-facing message of err, or fallback when err carries none.
func Detail(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return fallback
}

func notFound(err error, detail string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s", detail)
	}
	return err
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
