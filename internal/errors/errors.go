package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrStateConflict    = new(ErrCodeStateConflict, "operation conflicts with current state")
	ErrQuotaExceeded    = new(ErrCodeQuotaExceeded, "plan quota exceeded")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrTenantMismatch   = new(ErrCodeTenantMismatch, "entity belongs to a different tenant")
	ErrNoTenant         = new(ErrCodeNoTenant, "actor has no tenant")
	ErrInvalidTenant    = new(ErrCodeInvalidTenant, "tenant does not exist")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes for the presentation layer
	statusCodeMap = map[error]int{
		ErrNotFound:         http.StatusNotFound,
		ErrAlreadyExists:    http.StatusConflict,
		ErrValidation:       http.StatusBadRequest,
		ErrStateConflict:    http.StatusConflict,
		ErrQuotaExceeded:    http.StatusPaymentRequired,
		ErrPermissionDenied: http.StatusForbidden,
		ErrTenantMismatch:   http.StatusBadRequest,
		ErrNoTenant:         http.StatusForbidden,
		ErrInvalidTenant:    http.StatusForbidden,
		ErrDatabase:         http.StatusInternalServerError,
		ErrSystem:           http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeStateConflict    = "state_conflict"
	ErrCodeQuotaExceeded    = "quota_exceeded"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeTenantMismatch   = "tenant_mismatch"
	ErrCodeNoTenant         = "no_tenant"
	ErrCodeInvalidTenant    = "invalid_tenant"
	ErrCodeDatabase         = "database_error"
	ErrCodeSystemError      = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStateConflict checks if an error is an illegal lifecycle transition
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrStateConflict)
}

// IsQuotaExceeded checks if an error is a plan quota failure
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsTenantMismatch checks if an error is a cross-tenant write rejection
func IsTenantMismatch(err error) bool {
	return errors.Is(err, ErrTenantMismatch)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
