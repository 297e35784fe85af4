package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a concurrent write won a race, e.g. on an invoice number.
	ErrConflict = errors.New("conflict")
	// ErrPaymentGateway wraps failures of the external payment processor.
	ErrPaymentGateway = errors.New("payment gateway failure")
	// ErrSignature indicates a webhook payload failed signature verification.
	ErrSignature = errors.New("invalid signature")
	// ErrMalformedEvent indicates a webhook payload could not be parsed.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrCartInactive is returned when mutating or converting a deactivated cart.
	ErrCartInactive = errors.New("cart is not active")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError lists the offending fields. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
