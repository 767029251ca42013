package repository

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// NotFoundError is an error type for when a resource is not found.
type NotFoundError struct {
	message string
}

// NewNotFoundError creates a NotFoundError with the given message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{message: message}
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	if e.message == "" {
		return "not found"
	}
	return e.message
}

// ConflictError is an error type for uniqueness violations: a relation row,
// subscription edge or catalog entry that already exists.
type ConflictError struct {
	message string
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) ConflictError {
	return ConflictError{message: message}
}

// Error returns the error message.
func (e ConflictError) Error() string {
	if e.message == "" {
		return "already exists"
	}
	return e.message
}

// isUniqueViolation reports whether err is a unique constraint violation.
// Application-level existence checks can race between requests, so the
// schema-level violation is mapped to the same conflict outcome.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// isCheckViolation reports whether err is a check constraint violation.
func isCheckViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23514" {
		return true
	}
	return false
}
