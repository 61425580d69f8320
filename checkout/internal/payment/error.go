package payment

import (
	"errors"
	"fmt"
)

var ErrNonPositiveAmount = errors.New("payment amount must be positive")

// IntentError means no payment intent exists for the attempt. Bookings created
// before it stay as they were; nothing was charged.
type IntentError struct {
	Cause error
}

func (e *IntentError) Error() string {
	return fmt.Sprintf("failed requesting payment intent with error=%s", e.Cause.Error())
}

func (e *IntentError) Unwrap() error {
	return e.Cause
}

// ConfirmationError means the intent exists but settlement did not happen,
// either because the call failed or because the payment service declined it.
type ConfirmationError struct {
	IntentID string
	Cause    error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf(
		"failed confirming payment intentId=%s with error=%s",
		e.IntentID,
		e.Cause.Error(),
	)
}

func (e *ConfirmationError) Unwrap() error {
	return e.Cause
}
