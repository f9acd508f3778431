package failure

import (
	"time"

	"github.com/kbukum/accounts/errors"
)

// Record is one classified failure. It is built once per Handle call and
// handed to the Recorder by value.
type Record struct {
	ID               string          `json:"id"`
	Kind             errors.Kind     `json:"-"`
	Category         errors.Category `json:"category,omitempty"`
	Message          string          `json:"message"`
	OccurredAt       time.Time       `json:"occurred_at"`
	RequiresRollback bool            `json:"requires_rollback"`
	RolledBack       bool            `json:"rolled_back"`
	RollbackError    string          `json:"rollback_error,omitempty"`
	RequestID        string          `json:"request_id,omitempty"`
	Stack            string          `json:"stack,omitempty"`
}

// Status returns the HTTP status the failure was answered with.
func (r Record) Status() int {
	return errors.ToResponse(r.Kind).Status
}
