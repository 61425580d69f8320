package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one prospective booking held in the cart. Price is always
// UnitPrice multiplied by Quantity; it is recomputed on every mutation of
// either input and never stored stale.
type LineItem struct {
	ServiceID       uuid.UUID       `json:"serviceId"`
	ServiceName     string          `json:"serviceName"`
	ProviderID      string          `json:"providerId"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int32           `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	BookingDate     string          `json:"bookingDate,omitempty"`
	StartTime       string          `json:"startTime,omitempty"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	AddedAt         time.Time       `json:"addedAt"`
}

func (li LineItem) recomputed() LineItem {
	li.Price = li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
	return li
}

// Snapshot is an immutable view of the cart. Subtotal is the sum of line
// prices; ItemCount counts lines, not quantity units.
type Snapshot struct {
	Items     []LineItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
	TakenAt   time.Time       `json:"takenAt"`
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Cart is an ordered collection of line items. Insertion order is significant:
// it is the order bookings are created in at checkout.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

func Restore(items []LineItem) *Cart {
	c := &Cart{items: make([]LineItem, len(items))}
	for i, item := range items {
		c.items[i] = item.recomputed()
	}
	return c
}

// AddItem inserts a new line or, when a line for the same service already
// exists, merges onto it in place, keeping its position and AddedAt.
func (c *Cart) AddItem(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i, existing := range c.items {
		if existing.ServiceID == item.ServiceID {
			item.AddedAt = existing.AddedAt
			c.items[i] = item.recomputed()
			return
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.items = append(c.items, item.recomputed())
}

// RemoveItem removes the matching line; absence is a no-op, not an error.
func (c *Cart) RemoveItem(serviceID uuid.UUID) {
	for i, existing := range c.items {
		if existing.ServiceID == serviceID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of the matching line and recomputes its
// price. Quantity zero or below means "not wanted": the line is removed.
func (c *Cart) UpdateQuantity(serviceID uuid.UUID, quantity int32) {
	if quantity <= 0 {
		c.RemoveItem(serviceID)
		return
	}
	for i, existing := range c.items {
		if existing.ServiceID == serviceID {
			existing.Quantity = quantity
			c.items[i] = existing.recomputed()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Snapshot() Snapshot {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price)
	}
	return Snapshot{
		Items:     items,
		Subtotal:  subtotal,
		ItemCount: len(items),
		TakenAt:   time.Now(),
	}
}
