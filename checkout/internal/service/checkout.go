package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/novabook/bookify/checkout/internal/booking"
	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/checkout/internal/otel"
	"github.com/novabook/bookify/checkout/internal/payment"
	"github.com/novabook/bookify/checkout/internal/pricing"
	"github.com/novabook/bookify/checkout/pkg/request"
	inErrors "github.com/novabook/bookify/internal/errors"
	"github.com/novabook/bookify/internal/log"
	inOtel "github.com/novabook/bookify/internal/otel"
)

type BookingMaterializer interface {
	Create(
		c context.Context,
		item cart.LineItem,
		contact request.ContactInfo,
		totalAmount decimal.Decimal,
	) (booking.Created, error)
}

type PaymentOrchestrator interface {
	RequestIntent(
		c context.Context,
		amount decimal.Decimal,
		currency string,
		bookingIds []string,
	) (payment.Intent, error)
	Confirm(
		c context.Context,
		intentId string,
		credentials request.PaymentCredentials,
	) (payment.Settlement, error)
}

type CartStore interface {
	Snapshot(c context.Context, userID uuid.UUID) cart.Snapshot
	Clear(c context.Context, userID uuid.UUID)
}

// Transaction is one checkout attempt. Snapshot and Quote are frozen when
// booking creation begins and never recomputed; cart mutations after that
// point do not affect the attempt. CreatedBookingIDs is append-only and kept
// in cart order, including on failure.
type Transaction struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Step              Step
	Contact           request.ContactInfo
	Snapshot          cart.Snapshot
	Quote             pricing.Quote
	CreatedBookingIDs []string
	PaymentIntentID   string
	FailureStep       Step
	FailureReason     string
	StartedAt         time.Time
}

func (t *Transaction) view() Transaction {
	view := *t
	view.CreatedBookingIDs = append([]string(nil), t.CreatedBookingIDs...)
	view.Snapshot.Items = append([]cart.LineItem(nil), t.Snapshot.Items...)
	return view
}

// CheckoutService coordinates one transaction per user across the cart, the
// booking service, and the payment service. Bookings already created are never
// rolled back on a later failure; they are surfaced in the failed transaction
// instead.
type CheckoutService struct {
	mu       sync.Mutex
	carts    CartStore
	calc     pricing.Calculator
	bookings BookingMaterializer
	payments PaymentOrchestrator
	active   map[uuid.UUID]*Transaction
}

func NewCheckoutService(
	carts CartStore,
	calc pricing.Calculator,
	bookings BookingMaterializer,
	payments PaymentOrchestrator,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		calc:     calc,
		bookings: bookings,
		payments: payments,
		active:   map[uuid.UUID]*Transaction{},
	}
}

// Begin starts a new checkout attempt for the user. A terminal previous
// attempt is replaced; a live one is refused.
func (svc *CheckoutService) Begin(c context.Context, userID uuid.UUID) (Transaction, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Begin")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Begin").
		Str(log.KeyUserID, userID.String()).
		Logger()

	snapshot := svc.carts.Snapshot(c, userID)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if existing, ok := svc.active[userID]; ok && !existing.Step.IsTerminal() {
		err := fmt.Errorf(
			"failed beginning checkout at step=%s with error=%w",
			existing.Step,
			inErrors.ErrCheckoutInProgress,
		)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return existing.view(), err
	}
	if snapshot.IsEmpty() {
		err := fmt.Errorf("failed beginning checkout with error=%w", inErrors.ErrEmptyCart)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return Transaction{}, err
	}

	tx := &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Step:      StepCollectingContactInfo,
		Snapshot:  snapshot,
		Quote:     svc.calc.Quote(snapshot),
		StartedAt: time.Now(),
	}
	svc.active[userID] = tx

	logger.Info().
		Str(log.KeyCheckoutStep, string(tx.Step)).
		Int(log.KeyCartItemCount, snapshot.ItemCount).
		Msg("began checkout transaction")
	return tx.view(), nil
}

// SubmitContactInfo records the contact details and moves the attempt to
// payment collection. Format validation happened at the HTTP layer.
func (svc *CheckoutService) SubmitContactInfo(
	c context.Context,
	userID uuid.UUID,
	contact request.ContactInfo,
) (Transaction, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService SubmitContactInfo")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService SubmitContactInfo").
		Str(log.KeyUserID, userID.String()).
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	tx, ok := svc.active[userID]
	if !ok {
		err := fmt.Errorf(
			"failed submitting contact info with error=%w",
			inErrors.ErrNoActiveCheckout,
		)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return Transaction{}, err
	}
	if !tx.Step.CanTransitionTo(StepCollectingPayment) {
		err := fmt.Errorf(
			"failed transitioning from step=%s to step=%s with error=%w",
			tx.Step,
			StepCollectingPayment,
			inErrors.ErrIllegalTransition,
		)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return tx.view(), err
	}

	tx.Contact = contact
	tx.Step = StepCollectingPayment
	logger.Info().Str(log.KeyCheckoutStep, string(tx.Step)).Msg("submitted contact info")
	return tx.view(), nil
}

// Submit runs the transaction pipeline: freeze the cart, create one booking
// per line in cart order, request a single payment intent for the frozen
// total, confirm it, and only then clear the cart. The first booking failure
// ends the attempt before any intent is requested.
func (svc *CheckoutService) Submit(
	c context.Context,
	userID uuid.UUID,
	credentials request.PaymentCredentials,
) (Transaction, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Submit").
		Str(log.KeyUserID, userID.String()).
		Logger()

	snapshot := svc.carts.Snapshot(c, userID)

	tx, refused, err := svc.freeze(userID, snapshot)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return refused, err
	}
	logger = logger.With().
		Str(log.KeyCheckoutStep, string(StepCreatingBookings)).
		Int(log.KeyCartItemCount, tx.Snapshot.ItemCount).
		Logger()
	logger.Info().Msg("froze cart snapshot and quote")

	for _, item := range tx.Snapshot.Items {
		created, err := svc.bookings.Create(
			c,
			item,
			tx.Contact,
			svc.calc.LineTotal(item).RoundBank(2),
		)
		if err != nil {
			err = fmt.Errorf("failed creating booking with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			inOtel.RecordError(err, span)
			return svc.fail(tx, StepCreatingBookings, err), err
		}
		svc.appendBooking(tx, created.BookingID)
		logger.Info().
			Str(log.KeyServiceID, item.ServiceID.String()).
			Str(log.KeyBookingID, created.BookingID).
			Msg("created booking")
	}

	if err := svc.advance(tx, StepRequestingPayment); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return svc.fail(tx, StepRequestingPayment, err), err
	}
	amount := tx.Quote.Rounded().Total
	intent, err := svc.payments.RequestIntent(
		c,
		amount,
		tx.Quote.Currency,
		svc.bookingIds(tx),
	)
	if err != nil {
		err = fmt.Errorf("failed requesting payment intent with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return svc.fail(tx, StepRequestingPayment, err), err
	}
	svc.setIntent(tx, intent.ID)
	logger = logger.With().Str(log.KeyIntentID, intent.ID).Logger()
	logger.Info().Str(log.KeyAmount, amount.String()).Msg("requested payment intent")

	if err := svc.advance(tx, StepConfirmingPayment); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return svc.fail(tx, StepConfirmingPayment, err), err
	}
	settlement, err := svc.payments.Confirm(c, intent.ID, credentials)
	if err != nil {
		err = fmt.Errorf("failed confirming payment with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return svc.fail(tx, StepConfirmingPayment, err), err
	}
	logger.Info().Str("settlementReference", settlement.Reference).Msg("confirmed payment")

	if err := svc.advance(tx, StepCompleted); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return svc.fail(tx, StepCompleted, err), err
	}
	svc.carts.Clear(c, userID)
	logger.Info().Str(log.KeyCheckoutStep, string(StepCompleted)).Msg("completed checkout")

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return tx.view(), nil
}

// Current returns the user's transaction, live or terminal.
func (svc *CheckoutService) Current(c context.Context, userID uuid.UUID) (Transaction, error) {
	_, span := otel.Tracer.Start(c, "CheckoutService Current")
	defer span.End()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	tx, ok := svc.active[userID]
	if !ok {
		return Transaction{}, inErrors.ErrNoActiveCheckout
	}
	return tx.view(), nil
}

// Abandon drops the transaction. Refused once booking creation has begun;
// collaborator side effects are never cancelled mid-flight.
func (svc *CheckoutService) Abandon(c context.Context, userID uuid.UUID) error {
	_, span := otel.Tracer.Start(c, "CheckoutService Abandon")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Abandon").
		Str(log.KeyUserID, userID.String()).
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	tx, ok := svc.active[userID]
	if !ok {
		return inErrors.ErrNoActiveCheckout
	}
	if tx.Step.InFlight() {
		err := fmt.Errorf(
			"failed abandoning checkout at step=%s with error=%w",
			tx.Step,
			inErrors.ErrCheckoutInProgress,
		)
		logger.Error().Err(err).Msg(err.Error())
		inOtel.RecordError(err, span)
		return err
	}

	delete(svc.active, userID)
	logger.Info().Str(log.KeyCheckoutStep, string(tx.Step)).Msg("abandoned checkout")
	return nil
}

// freeze captures the snapshot and quote for the attempt and moves it to
// CreatingBookings. Done under the lock so a concurrent Submit for the same
// user sees the step already advanced and is refused. The refused view is
// also copied while the lock is held; the live transaction keeps being
// written by the in-flight Submit.
func (svc *CheckoutService) freeze(
	userID uuid.UUID,
	snapshot cart.Snapshot,
) (*Transaction, Transaction, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	tx, ok := svc.active[userID]
	if !ok {
		return nil, Transaction{}, fmt.Errorf(
			"failed submitting checkout with error=%w",
			inErrors.ErrNoActiveCheckout,
		)
	}
	if !tx.Step.CanTransitionTo(StepCreatingBookings) {
		return nil, tx.view(), fmt.Errorf(
			"failed transitioning from step=%s to step=%s with error=%w",
			tx.Step,
			StepCreatingBookings,
			inErrors.ErrIllegalTransition,
		)
	}
	if snapshot.IsEmpty() {
		return nil, tx.view(), fmt.Errorf(
			"failed submitting checkout with error=%w",
			inErrors.ErrEmptyCart,
		)
	}

	tx.Snapshot = snapshot
	tx.Quote = svc.calc.Quote(snapshot)
	tx.Step = StepCreatingBookings
	return tx, Transaction{}, nil
}

func (svc *CheckoutService) advance(tx *Transaction, next Step) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if !tx.Step.CanTransitionTo(next) {
		return fmt.Errorf(
			"failed transitioning from step=%s to step=%s with error=%w",
			tx.Step,
			next,
			inErrors.ErrIllegalTransition,
		)
	}
	tx.Step = next
	return nil
}

func (svc *CheckoutService) fail(tx *Transaction, at Step, cause error) Transaction {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	tx.FailureStep = at
	tx.FailureReason = cause.Error()
	tx.Step = StepFailed
	return tx.view()
}

func (svc *CheckoutService) appendBooking(tx *Transaction, bookingId string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	tx.CreatedBookingIDs = append(tx.CreatedBookingIDs, bookingId)
}

func (svc *CheckoutService) setIntent(tx *Transaction, intentId string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	tx.PaymentIntentID = intentId
}

func (svc *CheckoutService) bookingIds(tx *Transaction) []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]string(nil), tx.CreatedBookingIDs...)
}
