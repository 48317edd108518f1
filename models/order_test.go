package models

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	steak = MenuItem{ID: 1, Name: "Steak", Price: 10.00, Category: CategoryMainCourse, Available: true}
	tea   = MenuItem{ID: 2, Name: "Iced Tea", Price: 3.25, Category: CategoryBeverage, Available: true}
	soup  = MenuItem{ID: 3, Name: "Soup", Price: 6.40, Category: CategoryAppetizer, Available: true}
)

func assertTotals(t *testing.T, o *Order) {
	t.Helper()
	sum := 0.0
	for _, item := range o.Items() {
		sum += item.TotalPrice()
	}
	assert.InDelta(t, sum, o.Subtotal(), 1e-9)
	assert.InDelta(t, o.Subtotal()*TaxRate, o.Tax(), 1e-9)
	assert.InDelta(t, o.Subtotal()+o.Tax(), o.Total(), 1e-9)
}

func TestOrderTotals(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	require.NoError(t, o.AddItem(steak, 2, ""))

	assert.InDelta(t, 20.00, o.Subtotal(), 1e-9)
	assert.InDelta(t, 1.60, o.Tax(), 1e-9)
	assert.InDelta(t, 21.60, o.Total(), 1e-9)
}

func TestOrderTotalsHoldAcrossRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	menu := []MenuItem{steak, tea, soup}
	o := NewOrder(1000, "walk-in", time.Now())

	for i := 0; i < 300; i++ {
		switch rng.IntN(3) {
		case 0:
			require.NoError(t, o.AddItem(menu[rng.IntN(len(menu))], rng.IntN(4), ""))
		case 1:
			o.RemoveItem(rng.IntN(o.ItemCount() + 2))
		case 2:
			o.UpdateItemQuantity(rng.IntN(o.ItemCount()+2)-1, rng.IntN(6)-1)
		}
		assertTotals(t, o)
	}
}

func TestOrderItemQuantityClamp(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	require.NoError(t, o.AddItem(tea, 0, ""))
	assert.Equal(t, 1, o.Items()[0].Quantity)

	assert.True(t, o.UpdateItemQuantity(0, -3))
	assert.Equal(t, 1, o.Items()[0].Quantity)
}

func TestOutOfRangeEditsAreNoops(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	require.NoError(t, o.AddItem(steak, 1, ""))

	assert.False(t, o.RemoveItem(1))
	assert.False(t, o.RemoveItem(-1))
	assert.False(t, o.UpdateItemQuantity(3, 2))
	assert.False(t, o.SetItemInstructions(9, "rare"))
	assert.Equal(t, 1, o.ItemCount())
	assert.InDelta(t, 10.80, o.Total(), 1e-9)
}

func TestItemsReturnsCopy(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	require.NoError(t, o.AddItem(steak, 1, ""))

	items := o.Items()
	items[0].Quantity = 50

	assert.Equal(t, 1, o.Items()[0].Quantity)
}

func TestUnavailableItemRejected(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	sold := steak
	sold.Available = false

	assert.ErrorIs(t, o.AddItem(sold, 1, ""), ErrItemUnavailable)
	assert.True(t, o.IsEmpty())
}

func TestOrderLockedAfterSend(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())
	require.NoError(t, o.AddItem(steak, 1, ""))
	require.NoError(t, o.TransitionTo(OrderStatusSentToKitchen))

	assert.ErrorIs(t, o.AddItem(tea, 1, ""), ErrOrderLocked)
	assert.False(t, o.RemoveItem(0))
	assert.False(t, o.UpdateItemQuantity(0, 4))
	assert.Equal(t, 1, o.ItemCount())
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusSentToKitchen, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusServed, false},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusSentToKitchen, OrderStatusPreparing, true},
		{OrderStatusSentToKitchen, OrderStatusServed, true},
		{OrderStatusSentToKitchen, OrderStatusPending, false},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusSentToKitchen, false},
		{OrderStatusReady, OrderStatusServed, true},
		{OrderStatusReady, OrderStatusPreparing, false},
		{OrderStatusServed, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionToRejectsIllegalMove(t *testing.T) {
	o := NewOrder(1000, "table 1", time.Now())

	err := o.TransitionTo(OrderStatusReady)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusPending, o.Status())
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("READY")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReady, s)
	assert.True(t, OrderStatusServed.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())

	_, err = ParseOrderStatus("lost")
	assert.Error(t, err)
}

func TestOrderJSON(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := NewOrder(1000, "doordash", created)
	require.NoError(t, o.AddItem(tea, 2, "no ice"))

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var got OrderSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1000, got.ID)
	assert.Equal(t, OrderTypeDelivery, got.Type)
	assert.Equal(t, OrderStatusPending, got.Status)
	assert.Equal(t, "no ice", got.Items[0].SpecialInstructions)
	assert.Equal(t, 7.02, math.Round(got.Total*100)/100)
}
