package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/checkout/internal/pricing"
)

type CartItem struct {
	ServiceId       string          `json:"serviceId"`
	ServiceName     string          `json:"serviceName"`
	ProviderId      string          `json:"providerId"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int32           `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	BookingDate     string          `json:"bookingDate,omitempty"`
	StartTime       string          `json:"startTime,omitempty"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	AddedAt         time.Time       `json:"addedAt"`
}

// Cart is the presented cart: the snapshot lines plus the quote, with every
// amount currency-rounded. Internal amounts stay at full precision.
type Cart struct {
	Items      []CartItem      `json:"items"`
	ItemCount  int             `json:"itemCount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	BookingFee decimal.Decimal `json:"bookingFee"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

func NewCart(snapshot cart.Snapshot, quote pricing.Quote) Cart {
	rounded := quote.Rounded()
	items := make([]CartItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, CartItem{
			ServiceId:       item.ServiceID.String(),
			ServiceName:     item.ServiceName,
			ProviderId:      item.ProviderID,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			Price:           item.Price.RoundBank(2),
			BookingDate:     item.BookingDate,
			StartTime:       item.StartTime,
			SpecialRequests: item.SpecialRequests,
			AddedAt:         item.AddedAt,
		})
	}
	return Cart{
		Items:      items,
		ItemCount:  snapshot.ItemCount,
		Subtotal:   rounded.Subtotal,
		BookingFee: rounded.BookingFee,
		Tax:        rounded.Tax,
		Total:      rounded.Total,
		Currency:   rounded.Currency,
	}
}
