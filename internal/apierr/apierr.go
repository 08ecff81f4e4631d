package apierr

import (
  "errors"
  "fmt"
  "net/http"
)

const (
  CodeAuthentication = "authentication_error"
  CodeNotFound       = "not_found"
  CodeValidation     = "validation_error"
  CodePersistence    = "persistence_error"
)

type Error struct {
  Status int
  Code   string
  Err    error
}

func (e *Error) Error() string {
  if e == nil {
    return ""
  }
  if e.Err != nil {
    return e.Err.Error()
  }
  if e.Code != "" {
    return e.Code
  }
  if e.Status != 0 {
    return fmt.Sprintf("api error (%d)", e.Status)
  }
  return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
  return &Error{Status: status, Code: code, Err: err}
}

func Authentication(err error) *Error {
  return New(http.StatusUnauthorized, CodeAuthentication, err)
}

func NotFound(err error) *Error {
  return New(http.StatusNotFound, CodeNotFound, err)
}

func Validation(err error) *Error {
  return New(http.StatusBadRequest, CodeValidation, err)
}

func Persistence(err error) *Error {
  return New(http.StatusInternalServerError, CodePersistence, err)
}

// From extracts a typed api error. Anything untyped maps to a generic 500 so
// internal detail never reaches the caller.
func From(err error) *Error {
  var apiErr *Error
  if errors.As(err, &apiErr) {
    return apiErr
  }
  return New(http.StatusInternalServerError, "", errors.New("internal server error"))
}

func IsCode(err error, code string) bool {
  var apiErr *Error
  if errors.As(err, &apiErr) {
    return apiErr.Code == code
  }
  return false
}
