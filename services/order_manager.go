package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
)

const (
	FirstOrderID          = 1000
	DefaultMaxTableNumber = 50
)

type OrderManagerOptions struct {
	MaxTableNumber   int
	DeliveryChannels []string
	History          AppendLog[*models.Order]
	Hooks            OrderHooks
	Clock            func() time.Time
}

// OrderManager is the only place order ids are assigned and the only owner of
// active orders. Finished orders move to the append-only history. It is not
// safe for concurrent use; POSService serializes access.
type OrderManager struct {
	active    map[int]*models.Order
	history   AppendLog[*models.Order]
	nextID    int
	publisher events.Publisher
	hooks     OrderHooks
	now       func() time.Time

	maxTable int
	channels []string
}

func NewOrderManager(publisher events.Publisher, opts OrderManagerOptions) *OrderManager {
	if opts.MaxTableNumber <= 0 {
		opts.MaxTableNumber = DefaultMaxTableNumber
	}
	if opts.DeliveryChannels == nil {
		opts.DeliveryChannels = models.DefaultDeliveryChannels
	}
	if opts.History == nil {
		opts.History = NewMemoryLog[*models.Order]()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &OrderManager{
		active:    make(map[int]*models.Order),
		history:   opts.History,
		nextID:    FirstOrderID,
		publisher: publisher,
		hooks:     opts.Hooks,
		now:       opts.Clock,
		maxTable:  opts.MaxTableNumber,
		channels:  opts.DeliveryChannels,
	}
}

// CreateOrder never fails; the caller validates the table identifier.
func (m *OrderManager) CreateOrder(tableIdentifier string) *models.Order {
	order := models.NewOrder(m.nextID, strings.TrimSpace(tableIdentifier), m.now())
	m.nextID++
	m.active[order.ID] = order

	m.publisher.Publish(events.TopicOrderCreated, events.OrderCreated{Order: order.Snapshot()})
	if m.hooks.OnCreated != nil {
		m.hooks.OnCreated(order)
	}
	return order
}

func (m *OrderManager) GetOrder(id int) (*models.Order, bool) {
	order, ok := m.active[id]
	return order, ok
}

// GetCompletedOrder searches the history, newest first.
func (m *OrderManager) GetCompletedOrder(id int) (*models.Order, bool) {
	finished := m.history.All()
	for i := len(finished) - 1; i >= 0; i-- {
		if finished[i].ID == id {
			return finished[i], true
		}
	}
	return nil, false
}

func (m *OrderManager) GetActiveOrders() []*models.Order {
	return m.filter(func(*models.Order) bool { return true })
}

func (m *OrderManager) GetOrdersByTableIdentifier(tableIdentifier string) []*models.Order {
	want := strings.ToLower(strings.TrimSpace(tableIdentifier))
	return m.filter(func(o *models.Order) bool {
		return strings.ToLower(o.TableIdentifier) == want
	})
}

func (m *OrderManager) GetOrdersByStatus(status models.OrderStatus) []*models.Order {
	return m.filter(func(o *models.Order) bool { return o.Status() == status })
}

func (m *OrderManager) GetOrdersByType(orderType models.OrderType) []*models.Order {
	return m.filter(func(o *models.Order) bool { return o.Type() == orderType })
}

func (m *OrderManager) CompletedOrders() []*models.Order {
	return m.history.All()
}

func (m *OrderManager) ActiveCount() int {
	return len(m.active)
}

// CompleteOrder serves the order and moves it to history.
func (m *OrderManager) CompleteOrder(id int) error {
	order, err := m.finish(id, models.OrderStatusServed)
	if err != nil {
		return err
	}
	m.publisher.Publish(events.TopicOrderCompleted, events.OrderCompleted{Order: order.Snapshot()})
	if m.hooks.OnCompleted != nil {
		m.hooks.OnCompleted(order)
	}
	return nil
}

// CancelOrder cancels the order and moves it to history. Kitchen tickets are
// not touched here.
func (m *OrderManager) CancelOrder(id int) error {
	order, err := m.finish(id, models.OrderStatusCancelled)
	if err != nil {
		return err
	}
	m.publisher.Publish(events.TopicOrderCancelled, events.OrderCancelled{Order: order.Snapshot()})
	if m.hooks.OnCancelled != nil {
		m.hooks.OnCancelled(order)
	}
	return nil
}

// UpdateOrderStatus moves an active order along the transition table. Terminal
// statuses go through CompleteOrder / CancelOrder so history stays consistent.
func (m *OrderManager) UpdateOrderStatus(id int, status models.OrderStatus) error {
	switch status {
	case models.OrderStatusServed:
		return m.CompleteOrder(id)
	case models.OrderStatusCancelled:
		return m.CancelOrder(id)
	}

	order, ok := m.active[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	old := order.Status()
	if err := order.TransitionTo(status); err != nil {
		return err
	}
	m.publishStatusChange(id, old, status)
	return nil
}

// NotifyOrderModified announces an item change on an active order.
func (m *OrderManager) NotifyOrderModified(id int) {
	if order, ok := m.active[id]; ok {
		m.publisher.Publish(events.TopicOrderModified, events.OrderModified{Order: order.Snapshot()})
	}
}

func (m *OrderManager) IsValidTableIdentifier(tableIdentifier string) bool {
	return models.IsValidTableIdentifier(tableIdentifier, m.maxTable, m.channels)
}

func (m *OrderManager) finish(id int, status models.OrderStatus) (*models.Order, error) {
	order, ok := m.active[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	old := order.Status()
	if err := order.TransitionTo(status); err != nil {
		return nil, err
	}
	delete(m.active, id)
	m.history.Append(order)
	m.publishStatusChange(id, old, status)
	return order, nil
}

func (m *OrderManager) publishStatusChange(id int, old, status models.OrderStatus) {
	m.publisher.Publish(events.TopicOrderStatusChanged, events.OrderStatusChanged{
		OrderID:   id,
		OldStatus: old,
		NewStatus: status,
	})
}

// filter returns matching active orders sorted by id.
func (m *OrderManager) filter(keep func(*models.Order) bool) []*models.Order {
	out := make([]*models.Order, 0, len(m.active))
	for _, o := range m.active {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
