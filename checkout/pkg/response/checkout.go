package response

import (
	"time"

	"github.com/novabook/bookify/checkout/internal/service"
)

// Checkout is the presented transaction state. CreatedBookingIds stays in
// cart order and is populated on failure too, so the client can show which
// bookings exist even though payment never completed.
type Checkout struct {
	CheckoutId        string    `json:"checkoutId"`
	Step              string    `json:"step"`
	Cart              Cart      `json:"cart"`
	CreatedBookingIds []string  `json:"createdBookingIds"`
	BookingsExpected  int       `json:"bookingsExpected"`
	PaymentIntentId   string    `json:"paymentIntentId,omitempty"`
	FailureStep       string    `json:"failureStep,omitempty"`
	FailureReason     string    `json:"failureReason,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
}

func NewCheckout(tx service.Transaction) Checkout {
	createdBookingIds := tx.CreatedBookingIDs
	if createdBookingIds == nil {
		createdBookingIds = []string{}
	}
	return Checkout{
		CheckoutId:        tx.ID.String(),
		Step:              string(tx.Step),
		Cart:              NewCart(tx.Snapshot, tx.Quote),
		CreatedBookingIds: createdBookingIds,
		BookingsExpected:  tx.Snapshot.ItemCount,
		PaymentIntentId:   tx.PaymentIntentID,
		FailureStep:       string(tx.FailureStep),
		FailureReason:     tx.FailureReason,
		StartedAt:         tx.StartedAt,
	}
}
