package booking

import (
	"fmt"

	"github.com/google/uuid"
)

// CreationError reports one cart line the booking service rejected. It is
// terminal for the checkout attempt; retries are a new attempt the user
// starts, never automatic.
type CreationError struct {
	ServiceID uuid.UUID
	Cause     error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf(
		"failed creating booking for serviceId=%s with error=%s",
		e.ServiceID.String(),
		e.Cause.Error(),
	)
}

func (e *CreationError) Unwrap() error {
	return e.Cause
}
