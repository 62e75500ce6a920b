// Package apperr holds the domain error taxonomy. Services return these,
// the central fiber error handler maps them to HTTP statuses.
package apperr

import "fmt"

// NotFoundError: a referenced recipe, ingredient, store or cost record
// does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%d", e.Resource, e.ID)
}

func NotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// BusinessError: the request is well-formed but violates a business rule.
// Retrying with the same input would fail again.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func Business(format string, args ...any) error {
	return &BusinessError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError: the caller's role lacks permission for the operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}
