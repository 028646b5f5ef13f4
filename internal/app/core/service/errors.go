package service

import (
	"errors"
	"fmt"
)

// Standard error categories. Services wrap these so callers can classify
// failures with errors.Is without depending on concrete error types.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferFailed    = errors.New("transfer failed")
	ErrInternal          = errors.New("internal error")
)

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// RequiredError is a ValidationError for a missing required field.
func RequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// AccessDeniedError reports a caller lacking the role an operation requires.
type AccessDeniedError struct {
	Resource string
	ID       string
	Caller   string
	Reason   string
}

func NewAccessDeniedError(resource, id, caller string) *AccessDeniedError {
	return &AccessDeniedError{Resource: resource, ID: id, Caller: caller}
}

func (e *AccessDeniedError) Error() string {
	msg := fmt.Sprintf("access denied to %s %q for caller %s", e.Resource, e.ID, e.Caller)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *AccessDeniedError) Unwrap() error { return ErrUnauthorized }

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// StateError reports an operation attempted against the wrong lifecycle state.
type StateError struct {
	Resource string
	ID       string
	Current  string
	Wanted   string
}

func NewStateError(resource, id, current, wanted string) *StateError {
	return &StateError{Resource: resource, ID: id, Current: current, Wanted: wanted}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s is %s, operation requires %s", e.Resource, e.ID, e.Current, e.Wanted)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// IsInvalidState reports whether err is a lifecycle-state failure.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// InsufficientFundsError reports a request that exceeds what is available.
type InsufficientFundsError struct {
	Requested int64
	Available int64
}

func NewInsufficientFundsError(requested, available int64) *InsufficientFundsError {
	return &InsufficientFundsError{Requested: requested, Available: available}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// IsInsufficientFunds reports whether err is a funds-availability failure.
func IsInsufficientFunds(err error) bool { return errors.Is(err, ErrInsufficientFunds) }

// TransferError reports a custody backend declining or failing a transfer.
type TransferError struct {
	Direction string // "in" or "out"
	Amount    int64
	Cause     error
}

func NewTransferError(direction string, amount int64, cause error) *TransferError {
	return &TransferError{Direction: direction, Amount: amount, Cause: cause}
}

func (e *TransferError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transfer %s of %d failed: %v", e.Direction, e.Amount, e.Cause)
	}
	return fmt.Sprintf("transfer %s of %d declined by custody backend", e.Direction, e.Amount)
}

func (e *TransferError) Unwrap() error { return ErrTransferFailed }

// IsTransferFailed reports whether err is a custody transfer failure.
func IsTransferFailed(err error) bool { return errors.Is(err, ErrTransferFailed) }

// ServiceError annotates an error with the service and operation it escaped
// from. It unwraps to the underlying error so classification is preserved.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// WrapServiceError wraps err with service/operation context. Returns nil for
// a nil err.
func WrapServiceError(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Operation: operation, Err: err}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Service, e.Operation, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
