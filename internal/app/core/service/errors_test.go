package service

import (
	"errors"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("program", "42")

	expected := `program "42" not found`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected error to wrap ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true")
	}
}

func TestNotFoundError_NoID(t *testing.T) {
	err := NewNotFoundError("program", "")

	expected := "program not found"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "must not be empty")

	expected := "name: must not be empty"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected error to wrap ErrInvalidInput")
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true")
	}
}

func TestRequiredError(t *testing.T) {
	err := RequiredError("note")

	expected := "note: is required"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true for RequiredError")
	}
}

func TestAccessDeniedError(t *testing.T) {
	err := NewAccessDeniedError("program", "7", "0xabc")

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("expected error to wrap ErrUnauthorized")
	}

	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized should return true")
	}

	msg := err.Error()
	if msg != `access denied to program "7" for caller 0xabc` {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestAccessDeniedError_WithReason(t *testing.T) {
	err := &AccessDeniedError{
		Resource: "program",
		ID:       "3",
		Caller:   "0xdef",
		Reason:   "caller is not the responsible party",
	}

	msg := err.Error()
	if msg != `access denied to program "3" for caller 0xdef: caller is not the responsible party` {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestStateError(t *testing.T) {
	err := NewStateError("program", "5", "allocated", "registered")

	expected := "program 5 is allocated, operation requires registered"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected error to wrap ErrInvalidState")
	}

	if !IsInvalidState(err) {
		t.Error("IsInvalidState should return true")
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := NewInsufficientFundsError(1000, 400)

	expected := "insufficient funds: requested 1000, available 400"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !IsInsufficientFunds(err) {
		t.Error("IsInsufficientFunds should return true")
	}

	var ife *InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatal("expected errors.As to succeed")
	}
	if ife.Requested != 1000 || ife.Available != 400 {
		t.Errorf("unexpected fields: %+v", ife)
	}
}

func TestTransferError(t *testing.T) {
	err := NewTransferError("out", 250, nil)

	expected := "transfer out of 250 declined by custody backend"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !IsTransferFailed(err) {
		t.Error("IsTransferFailed should return true")
	}

	wrapped := NewTransferError("in", 10, errors.New("rpc unreachable"))
	if wrapped.Error() != "transfer in of 10 failed: rpc unreachable" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

func TestServiceError(t *testing.T) {
	underlying := NewNotFoundError("program", "9")
	err := WrapServiceError("ledger", "Withdraw", underlying)

	msg := err.Error()
	expected := `ledger.Withdraw: program "9" not found`
	if msg != expected {
		t.Errorf("expected %q, got %q", expected, msg)
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped error should still match ErrNotFound")
	}
}

func TestWrapServiceError_Nil(t *testing.T) {
	err := WrapServiceError("test", "op", nil)
	if err != nil {
		t.Error("WrapServiceError(nil) should return nil")
	}
}

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		err  error
		name string
	}{
		{ErrNotFound, "ErrNotFound"},
		{ErrAlreadyExists, "ErrAlreadyExists"},
		{ErrInvalidInput, "ErrInvalidInput"},
		{ErrUnauthorized, "ErrUnauthorized"},
		{ErrForbidden, "ErrForbidden"},
		{ErrConflict, "ErrConflict"},
		{ErrInvalidState, "ErrInvalidState"},
		{ErrInsufficientFunds, "ErrInsufficientFunds"},
		{ErrTransferFailed, "ErrTransferFailed"},
		{ErrInternal, "ErrInternal"},
	}

	for _, tc := range tests {
		if tc.err == nil {
			t.Errorf("%s should not be nil", tc.name)
		}
		if tc.err.Error() == "" {
			t.Errorf("%s should have non-empty message", tc.name)
		}
	}
}
