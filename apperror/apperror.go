// Package apperror defines the error kinds surfaced by the API and their HTTP mapping.
package apperror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientStock
	KindInvalidPaymentSignature
	KindOrderNotCancellable
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInvalidPaymentSignature:
		return "invalid_payment_signature"
	case KindOrderNotCancellable:
		return "order_not_cancellable"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is an error with a kind and a message that is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation              = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound                = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInsufficientStock       = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrInvalidPaymentSignature = &Error{Kind: KindInvalidPaymentSignature, Message: "invalid payment signature"}
	ErrOrderNotCancellable     = &Error{Kind: KindOrderNotCancellable, Message: "order can no longer be cancelled"}
	ErrConflict                = &Error{Kind: KindConflict, Message: "conflict"}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func InsufficientStock(format string, args ...any) *Error {
	return newf(KindInsufficientStock, format, args...)
}

func InvalidPaymentSignature() *Error {
	return &Error{Kind: KindInvalidPaymentSignature, Message: ErrInvalidPaymentSignature.Message}
}

func OrderNotCancellable(format string, args ...any) *Error {
	return newf(KindOrderNotCancellable, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// KindOf reports the kind of err, KindInternal for anything not built by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps a kind to the HTTP status code the API answers with.
// Conflicts are reported as 400 with a duplicate-key message.
func Status(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInsufficientStock, KindInvalidPaymentSignature, KindOrderNotCancellable, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message a client may see for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// FromDB translates storage errors into API errors. what names the entity for messages.
// Errors it does not recognise are returned unchanged.
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case isDuplicateKey(err):
		return &Error{Kind: KindConflict, Message: "duplicate key found: " + what, cause: err}
	default:
		return err
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}
