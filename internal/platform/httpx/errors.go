// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors mapped to HTTP statuses.
var (
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream service failed")
)

// Invalid returns a validation error whose message is used verbatim as the
// problem detail.
func Invalid(detail string) error {
	return &invalidError{detail: detail}
}

type invalidError struct {
	detail string
}

func (e *invalidError) Error() string { return e.detail }

func (e *invalidError) Unwrap() error { return ErrValidation }

// RespondError maps errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUpstream):
		Problem(w, http.StatusBadGateway, "Bad Gateway", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
