package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/internal/config"
)

// Quote is the priced view of a cart snapshot. Every total shown to the user
// or sent for payment comes from here; no other component derives one.
type Quote struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	BookingFee decimal.Decimal `json:"bookingFee"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	ItemCount  int             `json:"itemCount"`
}

// Rounded applies currency rounding (2 decimal places, round-half-even) to
// every amount. Intermediate sums stay at full precision; rounding happens
// only at presentation and at the amount sent for payment.
func (q Quote) Rounded() Quote {
	q.Subtotal = q.Subtotal.RoundBank(2)
	q.BookingFee = q.BookingFee.RoundBank(2)
	q.Tax = q.Tax.RoundBank(2)
	q.Total = q.Total.RoundBank(2)
	return q
}

// Calculator computes quotes from cart snapshots. The booking fee is flat per
// distinct line item, not per quantity unit; the tax rate applies to the
// subtotal only.
type Calculator struct {
	bookingFee decimal.Decimal
	taxRate    decimal.Decimal
	currency   string
}

func NewCalculator(cfg config.Checkout) (Calculator, error) {
	fee, err := decimal.NewFromString(cfg.BookingFee)
	if err != nil {
		return Calculator{}, fmt.Errorf(
			"failed parsing booking_fee=%s with error=%w",
			cfg.BookingFee,
			err,
		)
	}
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Calculator{}, fmt.Errorf(
			"failed parsing tax_rate=%s with error=%w",
			cfg.TaxRate,
			err,
		)
	}
	return Calculator{bookingFee: fee, taxRate: rate, currency: cfg.Currency}, nil
}

func (calc Calculator) Currency() string {
	return calc.currency
}

// BookingFee is the flat per-line fee, exposed so the booking materializer can
// price a single line the same way the aggregate quote does.
func (calc Calculator) BookingFee() decimal.Decimal {
	return calc.bookingFee
}

func (calc Calculator) Quote(snapshot cart.Snapshot) Quote {
	subtotal := decimal.Zero
	for _, item := range snapshot.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	bookingFee := calc.bookingFee.Mul(decimal.NewFromInt(int64(snapshot.ItemCount)))
	tax := subtotal.Mul(calc.taxRate)
	total := subtotal.Add(bookingFee).Add(tax)
	return Quote{
		Subtotal:   subtotal,
		BookingFee: bookingFee,
		Tax:        tax,
		Total:      total,
		Currency:   calc.currency,
		ItemCount:  snapshot.ItemCount,
	}
}

// LineTotal is the amount a single line contributes to a booking record: the
// line price plus one flat booking fee.
func (calc Calculator) LineTotal(item cart.LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)).Add(calc.bookingFee)
}
