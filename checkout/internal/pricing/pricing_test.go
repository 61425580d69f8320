package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/internal/config"
)

func testCalculator(t *testing.T) Calculator {
	t.Helper()
	calc, err := NewCalculator(config.Checkout{
		BookingFee: "10",
		TaxRate:    "0.08",
		Currency:   "USD",
	})
	require.NoError(t, err)
	return calc
}

func snapshotOf(items ...cart.LineItem) cart.Snapshot {
	c := cart.New()
	for _, item := range items {
		c.AddItem(item)
	}
	return c.Snapshot()
}

func line(unitPrice string, quantity int32) cart.LineItem {
	return cart.LineItem{
		ServiceID: uuid.New(),
		UnitPrice: decimal.RequireFromString(unitPrice),
		Quantity:  quantity,
	}
}

func TestQuote_SingleLine(t *testing.T) {
	calc := testCalculator(t)

	quote := calc.Quote(snapshotOf(line("100", 1)))

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("100")))
	assert.True(t, quote.BookingFee.Equal(decimal.RequireFromString("10")))
	assert.True(t, quote.Tax.Equal(decimal.RequireFromString("8")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("118")))
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, 1, quote.ItemCount)
}

func TestQuote_FeeIsPerLineNotPerUnit(t *testing.T) {
	calc := testCalculator(t)

	quote := calc.Quote(snapshotOf(line("50", 2), line("30", 1)))

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("130")))
	assert.True(t, quote.BookingFee.Equal(decimal.RequireFromString("20")))
	assert.True(t, quote.Tax.Equal(decimal.RequireFromString("10.4")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("160.4")))
	assert.Equal(t, 2, quote.ItemCount)
}

func TestQuote_EmptyCartIsZero(t *testing.T) {
	calc := testCalculator(t)

	quote := calc.Quote(snapshotOf())

	assert.True(t, quote.Total.IsZero())
	assert.Equal(t, 0, quote.ItemCount)
}

func TestQuote_IsDeterministic(t *testing.T) {
	calc := testCalculator(t)
	snapshot := snapshotOf(line("33.33", 3), line("0.01", 7))

	first := calc.Quote(snapshot)
	second := calc.Quote(snapshot)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Tax.Equal(second.Tax))
}

func TestQuote_AddingLineNeverLowersTotal(t *testing.T) {
	calc := testCalculator(t)

	smaller := calc.Quote(snapshotOf(line("50", 2)))
	larger := calc.Quote(snapshotOf(line("50", 2), line("30", 1)))

	assert.True(t, larger.Total.GreaterThan(smaller.Total))
}

func TestRounded_UsesBankersRounding(t *testing.T) {
	calc, err := NewCalculator(config.Checkout{
		BookingFee: "0",
		TaxRate:    "0.05",
		Currency:   "USD",
	})
	require.NoError(t, err)

	// 2.50 * 0.05 = 0.125, which rounds half-even down to 0.12.
	quote := calc.Quote(snapshotOf(line("2.50", 1))).Rounded()

	assert.True(t, quote.Tax.Equal(decimal.RequireFromString("0.12")), quote.Tax.String())
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("2.62")), quote.Total.String())
}

func TestRounded_IntermediatePrecisionIsKept(t *testing.T) {
	calc := testCalculator(t)

	quote := calc.Quote(snapshotOf(line("33.335", 1)))

	// Full precision until Rounded is called.
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("33.335")))
	assert.True(t, quote.Rounded().Subtotal.Equal(decimal.RequireFromString("33.34")))
}

func TestLineTotal_AddsOneFlatFee(t *testing.T) {
	calc := testCalculator(t)

	total := calc.LineTotal(line("50", 2))

	assert.True(t, total.Equal(decimal.RequireFromString("110")))
}

func TestNewCalculator_RejectsMalformedConfig(t *testing.T) {
	_, err := NewCalculator(config.Checkout{BookingFee: "ten", TaxRate: "0.08"})
	require.Error(t, err)

	_, err = NewCalculator(config.Checkout{BookingFee: "10", TaxRate: "eight percent"})
	require.Error(t, err)
}
