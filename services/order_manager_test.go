package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
)

func TestCreateOrderAssignsIncreasingIDs(t *testing.T) {
	rec := &recorder{}
	m := NewOrderManager(rec, OrderManagerOptions{})

	var last int
	for i := 0; i < 5; i++ {
		o := m.CreateOrder("table 2")
		if i == 0 {
			assert.Equal(t, FirstOrderID, o.ID)
		} else {
			assert.Greater(t, o.ID, last)
		}
		last = o.ID
	}
	assert.Equal(t, 5, m.ActiveCount())
	assert.Equal(t, 5, rec.count(events.TopicOrderCreated))
}

func TestCompleteAndCancelUnknownOrderChangeNothing(t *testing.T) {
	m := NewOrderManager(&recorder{}, OrderManagerOptions{})
	o := m.CreateOrder("walk-in")

	assert.ErrorIs(t, m.CompleteOrder(9999), ErrOrderNotFound)
	assert.ErrorIs(t, m.CancelOrder(9999), ErrOrderNotFound)

	assert.Equal(t, 1, m.ActiveCount())
	assert.Empty(t, m.CompletedOrders())
	_, ok := m.GetOrder(o.ID)
	assert.True(t, ok)
}

func TestCompleteOrderMovesToHistory(t *testing.T) {
	rec := &recorder{}
	var completed []int
	m := NewOrderManager(rec, OrderManagerOptions{
		Hooks: OrderHooks{OnCompleted: func(o *models.Order) { completed = append(completed, o.ID) }},
	})
	o := m.CreateOrder("table 4")
	require.NoError(t, o.AddItem(burger, 1, ""))
	require.NoError(t, o.TransitionTo(models.OrderStatusSentToKitchen))

	require.NoError(t, m.CompleteOrder(o.ID))

	_, active := m.GetOrder(o.ID)
	assert.False(t, active)
	done, ok := m.GetCompletedOrder(o.ID)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusServed, done.Status())
	assert.Equal(t, []int{o.ID}, completed)
	assert.Equal(t, []string{
		events.TopicOrderCreated,
		events.TopicOrderStatusChanged,
		events.TopicOrderCompleted,
	}, rec.topics())
}

func TestCompletePendingOrderIsRejected(t *testing.T) {
	m := NewOrderManager(&recorder{}, OrderManagerOptions{})
	o := m.CreateOrder("table 1")

	err := m.CompleteOrder(o.ID)

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, 1, m.ActiveCount())
	assert.Empty(t, m.CompletedOrders())
}

func TestCancelOrderRunsHook(t *testing.T) {
	rec := &recorder{}
	cancelled := 0
	m := NewOrderManager(rec, OrderManagerOptions{
		Hooks: OrderHooks{OnCancelled: func(*models.Order) { cancelled++ }},
	})
	o := m.CreateOrder("ubereats")

	require.NoError(t, m.CancelOrder(o.ID))

	assert.Equal(t, 1, cancelled)
	assert.Equal(t, 0, m.ActiveCount())
	assert.Equal(t, 1, rec.count(events.TopicOrderCancelled))
	assert.ErrorIs(t, m.CancelOrder(o.ID), ErrOrderNotFound)
}

func TestUpdateOrderStatusFollowsTransitionTable(t *testing.T) {
	m := NewOrderManager(&recorder{}, OrderManagerOptions{})
	o := m.CreateOrder("table 8")

	assert.ErrorIs(t, m.UpdateOrderStatus(o.ID, models.OrderStatusReady), models.ErrInvalidTransition)
	assert.Equal(t, models.OrderStatusPending, o.Status())

	require.NoError(t, m.UpdateOrderStatus(o.ID, models.OrderStatusSentToKitchen))
	require.NoError(t, m.UpdateOrderStatus(o.ID, models.OrderStatusPreparing))
	assert.ErrorIs(t, m.UpdateOrderStatus(o.ID, models.OrderStatusSentToKitchen), models.ErrInvalidTransition)

	require.NoError(t, m.UpdateOrderStatus(o.ID, models.OrderStatusServed))
	_, ok := m.GetCompletedOrder(o.ID)
	assert.True(t, ok)
}

func TestOrderFilters(t *testing.T) {
	m := NewOrderManager(&recorder{}, OrderManagerOptions{})
	a := m.CreateOrder("Table 3")
	m.CreateOrder("walk-in")
	c := m.CreateOrder("table 3")
	d := m.CreateOrder("doordash")
	require.NoError(t, m.UpdateOrderStatus(d.ID, models.OrderStatusSentToKitchen))

	byTable := m.GetOrdersByTableIdentifier(" TABLE 3 ")
	require.Len(t, byTable, 2)
	assert.Equal(t, a.ID, byTable[0].ID)
	assert.Equal(t, c.ID, byTable[1].ID)

	assert.Len(t, m.GetOrdersByType(models.OrderTypeDineIn), 2)
	assert.Len(t, m.GetOrdersByType(models.OrderTypeDelivery), 1)
	assert.Len(t, m.GetOrdersByStatus(models.OrderStatusPending), 3)
	assert.Len(t, m.GetActiveOrders(), 4)
}

func TestIsValidTableIdentifier(t *testing.T) {
	m := NewOrderManager(&recorder{}, OrderManagerOptions{MaxTableNumber: 10, DeliveryChannels: []string{"grubhub"}})

	tests := []struct {
		id   string
		want bool
	}{
		{"table 1", true},
		{"Table 10", true},
		{"table 11", false},
		{"table 0", false},
		{"walk-in", true},
		{"grubhub", true},
		{"ubereats", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsValidTableIdentifier(tt.id))
		})
	}
}
