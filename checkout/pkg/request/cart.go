package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddCartItem's UnitPrice is range-checked in the controller: a zero price is
// legal, so required would reject it, and the validator cannot range-check a
// decimal.
type AddCartItem struct {
	ServiceId       uuid.UUID       `validate:"required,uuid"  json:"serviceId"`
	ServiceName     string          `validate:"required"       json:"serviceName"`
	ProviderId      string          `validate:"required"       json:"providerId"`
	UnitPrice       decimal.Decimal `validate:"-"              json:"unitPrice"`
	Quantity        int32           `validate:"omitempty,gte=1" json:"quantity"`
	BookingDate     string          `validate:"omitempty,datetime=2006-01-02" json:"bookingDate"`
	StartTime       string          `validate:"omitempty" json:"startTime"`
	SpecialRequests string          `validate:"omitempty" json:"specialRequests"`
}

type UpdateCartItemQuantity struct {
	ServiceId uuid.UUID `validate:"required,uuid" json:"serviceId"`
	Quantity  int32     `validate:"gte=0"         json:"quantity"`
}

type RemoveCartItem struct {
	ServiceId uuid.UUID `validate:"required,uuid" json:"serviceId"`
}
