package http

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/model"
)

// HTTPError carries the status code a handler should answer with.
type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, model.ErrJobNotFound),
		errors.Is(err, model.ErrAttendeeNotFound),
		errors.Is(err, model.ErrDepartmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, email.ErrMissingField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
