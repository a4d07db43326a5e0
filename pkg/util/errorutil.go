package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to the HTTP boundary.
const (
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeNotFound                  = "NOT_FOUND"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeConflict                  = "CONFLICT"
	CodeInternal                  = "INTERNAL_ERROR"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeSelfDeactivationForbidden = "SELF_DEACTIVATION_FORBIDDEN"
	CodePrimaryAdminProtected     = "PRIMARY_ADMIN_PROTECTED"
	CodeLastAdminProtected        = "LAST_ADMIN_PROTECTED"
	CodeInvalidTransition         = "INVALID_TRANSITION"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewConflict reports a transactional conflict; callers may retry.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewInsufficientStock reports that a product cannot cover the requested
// quantity. Details carry the authoritative available count.
func NewInsufficientStock(productID string, available, requested int) error {
	return NewDomainError(CodeInsufficientStock, "insufficient stock", http.StatusBadRequest, map[string]any{
		"product_id": productID,
		"available":  available,
		"requested":  requested,
	})
}

func NewSelfDeactivationForbidden() error {
	return NewDomainError(CodeSelfDeactivationForbidden, "cannot deactivate own account through this operation", http.StatusBadRequest, nil)
}

func NewPrimaryAdminProtected() error {
	return NewDomainError(CodePrimaryAdminProtected, "primary administrator cannot be deactivated", http.StatusForbidden, nil)
}

func NewLastAdminProtected() error {
	return NewDomainError(CodeLastAdminProtected, "at least one active administrator must remain", http.StatusBadRequest, nil)
}

func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("cannot transition order from %s to %s", from, to), http.StatusBadRequest, map[string]any{
		"from": from,
		"to":   to,
	})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsConflict reports whether err is retryable per the conflict contract.
func IsConflict(err error) bool {
	return HasCode(err, CodeConflict)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
