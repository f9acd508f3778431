package failure

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a value recovered from a panic along with the stack of
// the panicking goroutine. It has no category and classifies as Unclassified.
type PanicError struct {
	Value any
	Stack []byte
}

// Recovered wraps a recovered panic value. Call it from the deferred function
// so the captured stack includes the panic site.
func Recovered(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
