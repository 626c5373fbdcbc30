package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	ErrValidation           = errors.New("validation failed")
	ErrFeatureOrderMismatch = errors.New("feature order mismatch")
	ErrScoringUnavailable   = errors.New("scoring unavailable")
	ErrAssessmentNotFound   = errors.New("assessment not found")
)

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. Nothing is
// clamped or defaulted.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	e := &ValidationError{}
	e.Add(field, format, args...)
	return e
}

// Add appends a violation.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Violations = append(e.Violations, FieldViolation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Merge appends the violations of other, if any.
func (e *ValidationError) Merge(other error) {
	var ve *ValidationError
	if errors.As(other, &ve) {
		e.Violations = append(e.Violations, ve.Violations...)
	}
}

// OrNil returns e when it holds violations and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FeatureOrderMismatchError is raised when the normalizer's column layout
// differs from the layout the scoring model declares.
type FeatureOrderMismatchError struct {
	Position int
	Have     string
	Want     string
}

func (e *FeatureOrderMismatchError) Error() string {
	return fmt.Sprintf("feature order mismatch at position %d: normalizer produces %q, model expects %q",
		e.Position, e.Have, e.Want)
}

func (e *FeatureOrderMismatchError) Is(target error) bool {
	return target == ErrFeatureOrderMismatch
}

// ScoringUnavailableError wraps any failure of the scoring model. It is
// surfaced to the caller and never retried.
type ScoringUnavailableError struct {
	Model string
	Cause error
}

func (e *ScoringUnavailableError) Error() string {
	return fmt.Sprintf("scoring unavailable (model %s): %v", e.Model, e.Cause)
}

func (e *ScoringUnavailableError) Unwrap() error { return e.Cause }

func (e *ScoringUnavailableError) Is(target error) bool {
	return target == ErrScoringUnavailable
}
