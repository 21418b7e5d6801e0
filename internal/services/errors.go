package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/feedback-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Lookups
	ErrFormNotFound     = errors.New("feedback form not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrFacultyNotFound  = errors.New("faculty not found")
	ErrResponseNotFound = errors.New("response not found")

	// Submission and activation rules
	ErrDuplicateSubmission = errors.New("student already submitted feedback for this activation period")
	ErrFormInactive        = errors.New("feedback form is not accepting submissions")
	ErrNoActivePeriod      = errors.New("feedback form has no open activation period")
	ErrPeriodNotFound      = errors.New("activation period not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	cause   error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// newFieldError wraps a single field problem as ValidationErrors so handlers
// render it like tag-driven failures.
func newFieldError(field, message, rule string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationErrorWithRule(field, message, rule, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// businessRule is NewBusinessRuleError with a sentinel cause that errors.Is can match.
func businessRule(cause error, rule string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: cause.Error(),
		Context: context,
		cause:   cause,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrFacultyNotFound) ||
		errors.Is(err, ErrResponseNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateSubmission)
}
