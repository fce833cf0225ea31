package services

import (
	"errors"

	"github.com/taskboard/backend/internal/validate"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError carries every violation found in one request, so a single
// response reports all of them.
type ValidationError struct {
	Fields validate.Errs
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func validationErr(errs validate.Errs) error {
	return &ValidationError{Fields: errs}
}
