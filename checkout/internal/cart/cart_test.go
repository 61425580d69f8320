package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(serviceId uuid.UUID, unitPrice string, quantity int32) LineItem {
	return LineItem{
		ServiceID:   serviceId,
		ServiceName: "Deep Cleaning",
		ProviderID:  "provider-1",
		UnitPrice:   decimal.RequireFromString(unitPrice),
		Quantity:    quantity,
	}
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	c := New()
	c.AddItem(lineItem(uuid.New(), "100", 0))

	snapshot := c.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.EqualValues(t, 1, snapshot.Items[0].Quantity)
	assert.True(t, snapshot.Items[0].Price.Equal(decimal.RequireFromString("100")))
}

func TestAddItem_MergesByServiceId(t *testing.T) {
	serviceA := uuid.New()
	serviceB := uuid.New()

	c := New()
	c.AddItem(lineItem(serviceA, "50", 1))
	c.AddItem(lineItem(serviceB, "30", 1))
	addedAt := c.Snapshot().Items[0].AddedAt

	c.AddItem(lineItem(serviceA, "50", 3))

	snapshot := c.Snapshot()
	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, serviceA, snapshot.Items[0].ServiceID)
	assert.Equal(t, serviceB, snapshot.Items[1].ServiceID)
	assert.EqualValues(t, 3, snapshot.Items[0].Quantity)
	assert.True(t, snapshot.Items[0].Price.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, addedAt, snapshot.Items[0].AddedAt)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	c := New()
	c.AddItem(lineItem(uuid.New(), "100", 1))

	c.RemoveItem(uuid.New())

	assert.Len(t, c.Snapshot().Items, 1)
}

func TestUpdateQuantity_RecomputesPrice(t *testing.T) {
	serviceA := uuid.New()
	c := New()
	c.AddItem(lineItem(serviceA, "19.99", 1))

	c.UpdateQuantity(serviceA, 4)

	snapshot := c.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.True(t, snapshot.Items[0].Price.Equal(decimal.RequireFromString("79.96")))
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	serviceA := uuid.New()
	serviceB := uuid.New()
	c := New()
	c.AddItem(lineItem(serviceA, "50", 2))
	c.AddItem(lineItem(serviceB, "30", 1))

	c.UpdateQuantity(serviceA, 0)

	snapshot := c.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, serviceB, snapshot.Items[0].ServiceID)
}

func TestSnapshot_SubtotalIsSumOfLinePrices(t *testing.T) {
	c := New()
	c.AddItem(lineItem(uuid.New(), "50", 2))
	c.AddItem(lineItem(uuid.New(), "30", 1))

	snapshot := c.Snapshot()

	assert.Equal(t, 2, snapshot.ItemCount)
	assert.True(t, snapshot.Subtotal.Equal(decimal.RequireFromString("130")))
}

func TestSnapshot_IsIsolatedFromLaterMutations(t *testing.T) {
	serviceA := uuid.New()
	c := New()
	c.AddItem(lineItem(serviceA, "100", 1))

	snapshot := c.Snapshot()
	c.UpdateQuantity(serviceA, 5)
	c.AddItem(lineItem(uuid.New(), "20", 1))

	require.Len(t, snapshot.Items, 1)
	assert.EqualValues(t, 1, snapshot.Items[0].Quantity)
	assert.True(t, snapshot.Subtotal.Equal(decimal.RequireFromString("100")))
}

func TestRestore_RecomputesStalePrices(t *testing.T) {
	stale := LineItem{
		ServiceID: uuid.New(),
		UnitPrice: decimal.RequireFromString("25"),
		Quantity:  3,
		Price:     decimal.RequireFromString("999"),
		AddedAt:   time.Now(),
	}

	c := Restore([]LineItem{stale})

	snapshot := c.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.True(t, snapshot.Items[0].Price.Equal(decimal.RequireFromString("75")))
}
