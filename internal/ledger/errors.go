package ledger

import (
	"fmt"

	"github.com/hatchify/errors"
)

const (
	ErrNotFound           = errors.Error("client not found")
	ErrAlreadyExists      = errors.Error("client already exists")
	ErrStorageIO          = errors.Error("storage i/o failure")
	ErrStorageFormat      = errors.Error("malformed storage data")
	ErrInvariantViolation = errors.Error("ledger invariant violated")
	ErrSessionClosed      = errors.Error("ledger session is closed")
	ErrClientExpired      = errors.Error("client is expired")
)

// NotFoundError reports a lookup of a name that is not in the ledger.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client with name '%s' doesn't exist", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError reports an insert or rename onto a taken name.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("client '%s' already exists", e.Name)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// StorageError wraps a failure of the underlying store. Kind is either
// ErrStorageIO or ErrStorageFormat.
type StorageError struct {
	Kind errors.Error
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == e.Kind }

func (e *StorageError) Unwrap() error { return e.Err }

// InvariantError means the store is corrupt, e.g. a client without payments.
// It is never caused by user input.
type InvariantError struct {
	Name   string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s for client '%s': %s", ErrInvariantViolation, e.Name, e.Detail)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// IOError wraps err as a StorageIO failure of op.
func IOError(op string, err error) error {
	return &StorageError{Kind: ErrStorageIO, Op: op, Err: err}
}

// FormatError wraps err as a StorageFormat failure of op.
func FormatError(op string, err error) error {
	return &StorageError{Kind: ErrStorageFormat, Op: op, Err: err}
}
