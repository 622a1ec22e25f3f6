package common

import (
	"errors"
	"fmt"
	"regexp"
)

type CustomerID string

// Validation constraints shared by the dashboard request types
const (
	CustomerIDMaxLength    = 64
	PaginationKeyMaxLength = 256
	FreeTextMaxLength      = 500
)

var customerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RuleError is a validation failure carrying a stable code. Clients and the
// translation catalogs key on the code; the message is the English default.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// NewRule creates a RuleError
func NewRule(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

// Validation errors for base types (no field context - that's the caller's job)
var (
	ErrRequired             = NewRule("required", "is required")
	ErrCustomerIDTooLong    = NewRule("customer_id_too_long", "must be at most 64 characters")
	ErrCustomerIDInvalid    = NewRule("customer_id_invalid", "must contain only letters, digits, hyphens, and underscores")
	ErrPaginationKeyTooLong = NewRule("pagination_key_too_long", "must be at most 256 characters")
	ErrFreeTextTooLong      = NewRule("free_text_too_long", "must be at most 500 characters")
)

// ValidationError represents a validation failure with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// NewValidationError creates a ValidationError by combining field name with a base error.
// A wrapped RuleError contributes its own code and message.
func NewValidationError(field string, err error) ValidationError {
	var rule *RuleError
	if errors.As(err, &rule) {
		return ValidationError{Field: field, Message: rule.Message, Code: rule.Code}
	}
	return ValidationError{Field: field, Message: err.Error()}
}

// ErrorFor returns the first error attached to field, if any.
func ErrorFor(errs []ValidationError, field string) (ValidationError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}

// ByField flattens errs into a field -> message map, keeping the first
// message seen for each field.
func ByField(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validate checks if the customer ID meets constraints (returns error without field context)
func (c CustomerID) Validate() error {
	if c == "" {
		return ErrRequired
	}
	if len(c) > CustomerIDMaxLength {
		return ErrCustomerIDTooLong
	}
	if !customerIDPattern.MatchString(string(c)) {
		return ErrCustomerIDInvalid
	}
	return nil
}

// ValidatePaginationKey checks an opaque pagination key handed back by a list call
func ValidatePaginationKey(key string) error {
	if len(key) > PaginationKeyMaxLength {
		return ErrPaginationKeyTooLong
	}
	return nil
}
