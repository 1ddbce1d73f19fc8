// Package apperr holds the error kinds shared by the catalog, order and payment
// packages and their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("access to this resource is not allowed")
	ErrItemUnavailable     = errors.New("menu item unavailable")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrPaymentVerification = errors.New("payment verification failed")

	ErrInvalidStatus        = fmt.Errorf("%w: unknown order status", ErrInvalidTransition)
	ErrInvalidPaymentStatus = fmt.Errorf("%w: unknown payment status", ErrInvalidTransition)
)

// ItemError names the menu item a request failed on.
type ItemError struct {
	Kind   error
	ItemID string
	Name   string
	Reason string
}

func (e *ItemError) Error() string {
	label := e.ItemID
	if e.Name != "" {
		label = fmt.Sprintf("%q (%s)", e.Name, e.ItemID)
	}
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Kind, label)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, label, e.Reason)
}

func (e *ItemError) Unwrap() error { return e.Kind }

// Validation returns an ErrValidation carrying a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrItemUnavailable), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentVerification):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// HTTPError writes err with its mapped status. Internal errors are reported
// with the generic status text only.
func HTTPError(w http.ResponseWriter, err error) {
	code := Status(err)
	if code >= http.StatusInternalServerError {
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Error(w, err.Error(), code)
}
