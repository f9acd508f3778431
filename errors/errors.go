package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is a failure tagged with the category of the layer that raised it.
// Message and Details are for diagnostics; they never reach the client.
type AppError struct {
	// Tag is the origin category used for classification.
	Tag Category `json:"category"`
	// Message is a short internal description.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Tag, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

// Category returns the origin tag of the failure.
func (e *AppError) Category() Category { return e.Tag }

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with the given category.
func New(category Category, message string) *AppError {
	return &AppError{Tag: category, Message: message}
}

// --- Store-origin constructors ---

// Integrity wraps a constraint violation reported by the store.
func Integrity(cause error) *AppError {
	return New(CategoryIntegrity, "constraint violation").WithCause(cause)
}

// DataFormat wraps a value the store rejected for its format or length.
func DataFormat(cause error) *AppError {
	return New(CategoryData, "invalid data format or length").WithCause(cause)
}

// ConnectionFailed wraps a failure to reach the store.
func ConnectionFailed(cause error) *AppError {
	return New(CategoryOperational, "database connection failed").WithCause(cause)
}

// QueryDefinition wraps an invalid statement or schema mismatch.
func QueryDefinition(cause error) *AppError {
	return New(CategoryProgramming, "invalid query definition").WithCause(cause)
}

// --- Protocol-origin constructors ---

// NotFound creates a failure for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return New(CategoryNotFound, fmt.Sprintf("%s not found", resource)).WithDetails(details)
}

// Unauthorized creates a failure for a caller that is not identified.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "authentication required"
	}
	return New(CategoryUnauthorized, reason)
}

// Forbidden creates a failure for a caller that lacks permission.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "permission denied"
	}
	return New(CategoryForbidden, reason)
}

// BadRequest creates a failure for a request that could not be parsed.
func BadRequest(reason string) *AppError {
	return New(CategoryBadRequest, reason)
}

// --- Input/runtime-origin constructors ---

// InvalidValue creates a failure for a field with an unacceptable value.
func InvalidValue(field, reason string) *AppError {
	e := New(CategoryValue, fmt.Sprintf("invalid value: %s", reason))
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// MissingField creates a failure for a missing required field.
func MissingField(field string) *AppError {
	return New(CategoryKey, fmt.Sprintf("missing required field: %s", field)).
		WithDetail("field", field)
}

// TypeMismatch creates a failure for a field of the wrong type.
func TypeMismatch(field, expected string) *AppError {
	return New(CategoryType, fmt.Sprintf("%s must be of type %s", field, expected)).
		WithDetails(map[string]any{"field": field, "expected_type": expected})
}

// InvalidState creates a failure for data found in an unusable state.
func InvalidState(reason string) *AppError {
	return New(CategoryAttribute, reason)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCategory reports whether err carries the given category tag.
func HasCategory(err error, category Category) bool {
	var c Categorized
	return stderrors.As(err, &c) && c.Category() == category
}
