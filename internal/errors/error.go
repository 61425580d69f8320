package errors

import (
	"errors"
)

var (
	ErrEmptyAuth          = errors.New("missing authorization")
	ErrEmptySubject       = errors.New("missing subject")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrNoActiveCheckout   = errors.New("no active checkout transaction")
	ErrIllegalTransition  = errors.New("illegal checkout step transition")
)
