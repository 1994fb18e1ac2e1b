package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidAmount        = errors.New("amount must be a positive number of credits")
	ErrDuplicateReference   = errors.New("reference already applied")
	ErrDependentWriteFailed = errors.New("purchase could not complete, credits refunded")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
)

// InsufficientBalanceError is returned by the ledger store when a debit
// would take the balance below zero.
type InsufficientBalanceError struct {
	Balance int64
	Delta   int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: balance %d, delta %d", e.Balance, e.Delta)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InsufficientCreditsError tells the caller how large a top-up is needed.
type InsufficientCreditsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: you have %d but need %d", e.Balance, e.Required)
}

func (e *InsufficientCreditsError) Unwrap() error { return ErrInsufficientCredits }

// Shortfall is the minimum top-up that would let the spend succeed.
func (e *InsufficientCreditsError) Shortfall() int64 {
	if e.Required <= e.Balance {
		return 0
	}
	return e.Required - e.Balance
}

// DependentWriteFailedError is returned by a compound operation whose spend
// succeeded but whose dependent record could not be written.
type DependentWriteFailedError struct {
	Operation string
	Credits   int64
	Refunded  bool
	Cause     error
}

func (e *DependentWriteFailedError) Error() string {
	if e.Refunded {
		return fmt.Sprintf("%s: purchase could not complete, %d credits refunded: %v", e.Operation, e.Credits, e.Cause)
	}
	return fmt.Sprintf("%s: purchase could not complete and refund of %d credits is pending: %v", e.Operation, e.Credits, e.Cause)
}

func (e *DependentWriteFailedError) Unwrap() []error {
	return []error{ErrDependentWriteFailed, e.Cause}
}

// StorageError marks a transient infrastructure failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

// ErrorKind classifies an error against the wallet's taxonomy.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindInsufficientCredits  ErrorKind = "insufficient_credits"
	KindInvalidAmount        ErrorKind = "invalid_amount"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindDuplicateReference   ErrorKind = "duplicate_reference"
	KindDependentWriteFailed ErrorKind = "dependent_write_failed"
	KindNotFound             ErrorKind = "not_found"
	KindConflict             ErrorKind = "conflict"
	KindUnauthorized         ErrorKind = "unauthorized"
	KindStorageUnavailable   ErrorKind = "storage_unavailable"
)

// KindOf maps any error returned by the wallet core onto an ErrorKind.
// Unknown errors are treated as storage failures.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDependentWriteFailed):
		return KindDependentWriteFailed
	case errors.Is(err, ErrInsufficientCredits), errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientCredits
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrDuplicateReference):
		return KindDuplicateReference
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindStorageUnavailable
	}
}

// Retryable reports whether the caller may retry the same request.
func (k ErrorKind) Retryable() bool {
	return k == KindStorageUnavailable || k == KindDependentWriteFailed
}
