package session

import (
	"errors"
	"fmt"
)

// Preconditions a caller can violate.
var (
	ErrEmptyDescription = errors.New("mission description is empty")
	ErrBusy             = errors.New("a request is already in flight")
	ErrNotReady         = errors.New("no optimized task is ready")
	ErrNoTaskID         = errors.New("optimized task has no id")
	ErrClosed           = errors.New("session is closed")
)

// ContractViolation is returned when an operation is invoked while its
// precondition does not hold. No state changes and no request is sent.
type ContractViolation struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s rejected in phase %s: %v", e.Op, e.Phase, e.Err)
}

func (e *ContractViolation) Unwrap() error { return e.Err }
