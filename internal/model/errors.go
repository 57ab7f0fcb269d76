package model

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. Fields lists the
// offending field names so the caller can fix the request.
type ValidationError struct {
	Message string
	Fields  []string
}

// NewValidationError creates a validation error naming the invalid fields.
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (fields: %s)", e.Message, strings.Join(e.Fields, ", "))
}

// NotFoundError reports a missing resource, or one the caller may not see.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a not-found error for the given resource.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// CapacityConflictError reports that a slot is fully booked, or that the
// actor already holds a booking at that instant. SlotLabel carries the
// human-readable time of the clashing slot; it is what users see, never a
// raw UTC offset. Retryable by picking another slot.
type CapacityConflictError struct {
	Message   string
	SlotLabel string
}

// NewCapacityConflictError creates a capacity conflict naming the slot.
func NewCapacityConflictError(message, slotLabel string) *CapacityConflictError {
	return &CapacityConflictError{Message: message, SlotLabel: slotLabel}
}

func (e *CapacityConflictError) Error() string {
	if e.SlotLabel == "" {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.SlotLabel)
}

// StateConflictError reports a business-rule violation on the reservation
// lifecycle, such as cancelling a non-BOOKED reservation. Not retryable
// as-is.
type StateConflictError struct {
	Message string
}

// NewStateConflictError creates a state conflict error.
func NewStateConflictError(message string) *StateConflictError {
	return &StateConflictError{Message: message}
}

func (e *StateConflictError) Error() string {
	return e.Message
}
