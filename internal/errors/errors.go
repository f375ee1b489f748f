// internal/errors/errors.go
package appErrors

import (
	"fmt"
	"strings"
)

// NotFoundError is returned by update and delete when the id does not resolve to a row.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Helper constructor
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// FieldError describes one offending input field.
type FieldError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Message  string `json:"message"`
}

// ValidationError lists every field that failed the declared input shape.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, expected, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Expected: expected, Message: message})
}

// Err returns e when at least one field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
