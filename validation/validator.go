package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/accounts/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`

	missing bool
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) addMissing(field string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: "is required",
		missing: true,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Validate returns an AppError if there are validation errors, nil otherwise.
// A missing field takes precedence over invalid values.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	for _, e := range v.errors {
		if e.missing {
			return errors.MissingField(e.Field).WithDetail("fields", v.errors)
		}
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.InvalidValue(v.errors[0].Field, strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}

// Required records a missing-field error when value is empty after
// trimming whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.addMissing(field)
	}
	return v
}

// ParseID parses a positive numeric identifier taken from a path parameter.
func ParseID(field, raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.MissingField(field)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.InvalidValue(field, fmt.Sprintf("%s must be a positive integer", field)).WithCause(err)
	}
	return uint(id), nil
}
