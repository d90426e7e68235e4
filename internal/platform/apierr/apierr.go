// Package apierr carries an HTTP status and a machine-readable code
// alongside an error, so generation services can classify failures
// (bad chapter number, missing chapters) without importing the HTTP layer.
// The response package maps it to the error envelope at the boundary.
package apierr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// BadRequest is a validation failure: the caller sent something the
// operation cannot work with.
func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
