package request

import (
	"github.com/rs/zerolog"
)

// ContactInfo is collected before any network call is made. Format validation
// happens at the HTTP layer; the coordinator never sees an invalid one.
type ContactInfo struct {
	Name     string `validate:"required"           json:"name"`
	Email    string `validate:"required,email"     json:"email"`
	Phone    string `validate:"required,e164"      json:"phone"`
	Location string `validate:"omitempty"          json:"location"`
}

// PaymentCredentials is the client-side handle used to confirm a payment
// intent. It is opaque to this service and never logged.
type PaymentCredentials struct {
	Method string `validate:"required,oneof=card wallet" json:"method"`
	Token  string `validate:"required"                   json:"token"`
}

func (p PaymentCredentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("method", p.Method).Str("token", "***")
}

type SubmitCheckout struct {
	Credentials PaymentCredentials `validate:"required" json:"credentials"`
}
