// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Validation errors - rejected before any state change.
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")
	ErrNotPositive  = errors.New("value must be positive")

	// Permission errors - caller lacks a required role.
	ErrPermissionDenied = errors.New("permission denied")

	// Conflict errors - the operation clashes with current state.
	ErrConflict        = errors.New("state conflict")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrNotFound        = errors.New("entity not found")
	ErrStateTransition = errors.New("invalid state transition")

	// Persistence errors - the in-memory mutation succeeded but was not
	// made durable; the caller must retry or accept loss on crash.
	ErrPersistence = errors.New("persistence error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "ledger", "voice", "roleapp"
	Op      string // Operation that failed, e.g., "Grant", "Submit"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Ledger domain errors.
var (
	ErrGrantNotPositive = NewDomainError("ledger", "Grant", ErrNotPositive, "grant amount must be positive")
	ErrInvalidMemberID  = NewDomainError("ledger", "Validate", ErrInvalidInput, "invalid member ID")
)

// Role application domain errors.
var (
	ErrUnknownRole          = NewDomainError("roleapp", "Submit", ErrValidation, "no requirement configured for role")
	ErrDuplicatePending     = NewDomainError("roleapp", "Submit", ErrAlreadyExists, "member already has a pending application")
	ErrInsufficientXP       = NewDomainError("roleapp", "Submit", ErrValidation, "balance below role threshold")
	ErrNoPendingApplication = NewDomainError("roleapp", "Decide", ErrNotFound, "member has no pending application")
)

// Permission errors shared by commands.
var (
	ErrNotEligible = NewDomainError("guild", "CheckRole", ErrPermissionDenied, "member does not hold the tracked role")
	ErrNotHighRank = NewDomainError("guild", "CheckRole", ErrPermissionDenied, "member does not hold the high-rank role")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNotPositive)
}

// IsPermission checks if the error is a permission error.
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStateTransition)
}

// IsPersistence checks if the error is a persistence error.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
