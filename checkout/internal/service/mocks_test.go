package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novabook/bookify/checkout/internal/booking"
	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/checkout/internal/payment"
	"github.com/novabook/bookify/checkout/pkg/request"
)

// mockCartStore implements CartStore for testing.
type mockCartStore struct {
	snapshot cart.Snapshot
	cleared  int
}

func (m *mockCartStore) Snapshot(_ context.Context, _ uuid.UUID) cart.Snapshot {
	return m.snapshot
}

func (m *mockCartStore) Clear(_ context.Context, _ uuid.UUID) {
	m.cleared++
	m.snapshot = cart.Snapshot{}
}

// clearStepStore records the transaction step observed at the moment the
// cart is cleared.
type clearStepStore struct {
	mockCartStore
	stepAtClear func() Step
	observed    Step
}

func (m *clearStepStore) Clear(c context.Context, userId uuid.UUID) {
	m.observed = m.stepAtClear()
	m.mockCartStore.Clear(c, userId)
}

// blockingBookings implements BookingMaterializer for concurrency tests.
// Create parks until release is closed.
type blockingBookings struct {
	entered chan struct{}
	release chan struct{}
	created int
}

func newBlockingBookings() *blockingBookings {
	return &blockingBookings{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
}

func (m *blockingBookings) Create(
	_ context.Context,
	_ cart.LineItem,
	_ request.ContactInfo,
	totalAmount decimal.Decimal,
) (booking.Created, error) {
	m.entered <- struct{}{}
	<-m.release
	m.created++
	return booking.Created{
		BookingID:   fmt.Sprintf("booking-%d", m.created),
		TotalAmount: totalAmount,
		Status:      "pending",
	}, nil
}

// mockBookings implements BookingMaterializer for testing. failAt is the
// 1-based call index that fails; zero means every call succeeds.
type mockBookings struct {
	failAt     int
	serviceIds []uuid.UUID
	amounts    []decimal.Decimal
}

func (m *mockBookings) Create(
	_ context.Context,
	item cart.LineItem,
	_ request.ContactInfo,
	totalAmount decimal.Decimal,
) (booking.Created, error) {
	m.serviceIds = append(m.serviceIds, item.ServiceID)
	m.amounts = append(m.amounts, totalAmount)
	if m.failAt != 0 && len(m.serviceIds) == m.failAt {
		return booking.Created{}, &booking.CreationError{
			ServiceID: item.ServiceID,
			Cause:     fmt.Errorf("provider unavailable"),
		}
	}
	return booking.Created{
		BookingID:   fmt.Sprintf("booking-%d", len(m.serviceIds)),
		TotalAmount: totalAmount,
		Status:      "pending",
	}, nil
}

// mockPayments implements PaymentOrchestrator for testing.
type mockPayments struct {
	intentErr  error
	confirmErr error

	intents     int
	confirms    int
	amount      decimal.Decimal
	currency    string
	bookingIds  []string
	intentId    string
	credentials request.PaymentCredentials
}

func (m *mockPayments) RequestIntent(
	_ context.Context,
	amount decimal.Decimal,
	currency string,
	bookingIds []string,
) (payment.Intent, error) {
	m.intents++
	m.amount = amount
	m.currency = currency
	m.bookingIds = append([]string(nil), bookingIds...)
	if m.intentErr != nil {
		return payment.Intent{}, m.intentErr
	}
	return payment.Intent{
		ID:           "intent-1",
		ClientAmount: amount,
		Currency:     currency,
	}, nil
}

func (m *mockPayments) Confirm(
	_ context.Context,
	intentId string,
	credentials request.PaymentCredentials,
) (payment.Settlement, error) {
	m.confirms++
	m.intentId = intentId
	m.credentials = credentials
	if m.confirmErr != nil {
		return payment.Settlement{Status: payment.SettlementFailed}, m.confirmErr
	}
	return payment.Settlement{Status: payment.SettlementSettled, Reference: "ref-1"}, nil
}
