package outline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Predefined Error Values
// =============================================================================

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("not found")
)

// =============================================================================
// Error Types
// =============================================================================

// Violation is a single broken rule on an entity field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError reports every violation found on an entity when a mutation
// was rejected. The entity is left as it was before the call.
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError signals that a referenced entity could not be resolved.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransitionError describes a rejected state change.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot move from %s to %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// =============================================================================
// Constructors
// =============================================================================

func newValidationError(entity string, violations ...Violation) *ValidationError {
	return &ValidationError{Entity: entity, Violations: violations}
}

func invalid(entity, field, rule, message string) *ValidationError {
	return newValidationError(entity, Violation{Field: field, Rule: rule, Message: message})
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a missing-reference failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidTransition reports whether err is a rejected state change.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
