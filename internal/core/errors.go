package core

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired          = errors.New("authentication required")
	ErrNotFound              = errors.New("not found")
	ErrPaused                = errors.New("ctf is paused")
	ErrLocked                = errors.New("challenge is locked")
	ErrPrereqsUnmet          = errors.New("challenge prerequisites not met")
	ErrNoMachineCapability   = errors.New("challenge has no machine")
	ErrResourceLimitExceeded = errors.New("you have reached the maximum machine limit, terminate another machine first")
	ErrProvisioningFailed    = errors.New("provisioning failed")
	ErrPersistenceFailed     = errors.New("persistence failed")
	ErrInvalidConfig         = errors.New("invalid machine config")
)

// ProvisioningError wraps a failed orchestrator or network call.
type ProvisioningError struct {
	Op  string
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProvisioningError) Unwrap() []error {
	return []error{ErrProvisioningFailed, e.Err}
}

// PersistenceError wraps a failed store call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistenceFailed, e.Err}
}

func provisioning(op string, err error) error {
	return &ProvisioningError{Op: op, Err: err}
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func invalidConfig(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}
