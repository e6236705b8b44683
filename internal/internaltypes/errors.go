package internaltypes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
)

// NotFoundError names the missing entity. errors.Is matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

var (
	ErrRoomNotFound        = &NotFoundError{Entity: "room"}
	ErrClientNotFound      = &NotFoundError{Entity: "client"}
	ErrReservationNotFound = &NotFoundError{Entity: "reservation"}
)

// Lookup annotates an error from loading entity id. A not-found error is
// replaced by the entity's sentinel; anything else keeps its chain.
func Lookup(entity *NotFoundError, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: id %d", entity, id)
	}
	return fmt.Errorf("%s %d: %w", entity.Entity, id, err)
}

// FieldError is one constraint violation on an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level violations. errors.Is matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a single-field ValidationError.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}
