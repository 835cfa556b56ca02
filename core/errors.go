package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUniqueViolation is returned by the storage layer when a write hits a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError names the entity type and the id that could not be found.
type NotFoundError struct {
	Entity  string
	ID      string
	Message string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (err NotFoundError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return fmt.Sprintf("%s with ID %s not found", err.Entity, err.ID)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type ConflictError struct {
	message string
}

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{message: fmt.Sprintf(format, args...)}
}

func (err ConflictError) Error() string {
	return err.message
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// AuthError is returned when credentials can not be verified.
type AuthError struct {
	message string
}

func NewAuthError(msg string) error {
	return &AuthError{message: msg}
}

func (err AuthError) Error() string {
	return err.message
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
