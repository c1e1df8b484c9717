package services

import (
	"errors"
	"fmt"
	"sort"

	apperrors "github.com/SAP-F-2025/recompletion-service/internal/errors"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/hashicorp/go-multierror"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden - insufficient permissions")

	ErrCourseNotFound  = errors.New("course not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRestricted      = errors.New("user does not qualify for recompletion in this course")
	ErrInvalidSchedule = errors.New("schedule does not describe a future time")
	ErrResetInProgress = errors.New("a reset for this user and course is already running")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`

	cause error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	CourseID   uint   `json:"course_id"`
	Capability string `json:"capability"`
	Action     string `json:"action"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s in course %d - %s required",
		pe.UserID, pe.Action, pe.CourseID, pe.Capability)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}, cause error) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
		cause:   cause,
	}
}

func NewPermissionError(userID, courseID uint, capability, action string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		CourseID:   courseID,
		Capability: capability,
		Action:     action,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidSchedule) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre) || errors.Is(err, ErrRestricted)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrResetInProgress)
}

// ===== BATCH RESULTS =====

// TargetResult is the outcome of one (user, course) reset inside a batch.
type TargetResult struct {
	UserID   uint     `json:"user_id"`
	CourseID uint     `json:"course_id"`
	Skipped  bool     `json:"skipped,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// BatchResult collects per-target outcomes. One failing target never stops the batch.
type BatchResult struct {
	Results []TargetResult `json:"results"`

	errs *multierror.Error
}

func (b *BatchResult) add(userID, courseID uint, warnings []string, err error) {
	result := TargetResult{UserID: userID, CourseID: courseID, Warnings: warnings}
	switch {
	case err == nil:
	case errors.Is(err, ErrRestricted):
		result.Skipped = true
	default:
		result.Error = err.Error()
		b.errs = multierror.Append(b.errs, fmt.Errorf("user %d course %d: %w", userID, courseID, err))
	}
	b.Results = append(b.Results, result)
}

// Processed counts targets that were reset.
func (b *BatchResult) Processed() int {
	n := 0
	for _, r := range b.Results {
		if r.Error == "" && !r.Skipped {
			n++
		}
	}
	return n
}

func (b *BatchResult) Skipped() int {
	n := 0
	for _, r := range b.Results {
		if r.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the user ids whose reset failed, sorted.
func (b *BatchResult) Failed() []uint {
	var ids []uint
	for _, r := range b.Results {
		if r.Error != "" {
			ids = append(ids, r.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Err returns every failure as one multierror, or nil when all targets succeeded.
func (b *BatchResult) Err() error {
	return b.errs.ErrorOrNil()
}
