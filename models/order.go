package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TaxRate applied to every order subtotal.
const TaxRate = 0.08

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusSentToKitchen OrderStatus = "SENT_TO_KITCHEN"
	OrderStatusPreparing     OrderStatus = "PREPARING"
	OrderStatusReady         OrderStatus = "READY"
	OrderStatusServed        OrderStatus = "SERVED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOrderLocked       = errors.New("order can no longer be edited")
	ErrItemUnavailable   = errors.New("menu item is not available")
)

// orderTransitions lists the legal forward moves. Terminal states have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:       {OrderStatusSentToKitchen, OrderStatusCancelled},
	OrderStatusSentToKitchen: {OrderStatusPreparing, OrderStatusReady, OrderStatusServed, OrderStatusCancelled},
	OrderStatusPreparing:     {OrderStatusReady, OrderStatusServed, OrderStatusCancelled},
	OrderStatusReady:         {OrderStatusServed, OrderStatusCancelled},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusServed || s == OrderStatusCancelled
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusSentToKitchen, OrderStatusPreparing,
		OrderStatusReady, OrderStatusServed, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order aggregates line items. Items, status and totals are only reachable
// through methods so the totals can never go stale.
type Order struct {
	ID              int
	TableIdentifier string
	CreatedAt       time.Time

	items    []OrderItem
	status   OrderStatus
	subtotal float64
	tax      float64
	total    float64
}

func NewOrder(id int, tableIdentifier string, createdAt time.Time) *Order {
	return &Order{
		ID:              id,
		TableIdentifier: tableIdentifier,
		CreatedAt:       createdAt,
		status:          OrderStatusPending,
	}
}

func (o *Order) Status() OrderStatus { return o.status }
func (o *Order) Subtotal() float64   { return o.subtotal }
func (o *Order) Tax() float64        { return o.tax }
func (o *Order) Total() float64      { return o.total }
func (o *Order) ItemCount() int      { return len(o.items) }
func (o *Order) IsEmpty() bool       { return len(o.items) == 0 }

// Items returns a copy; mutate through the order's methods.
func (o *Order) Items() []OrderItem {
	out := make([]OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Order) Type() OrderType {
	return OrderTypeFor(o.TableIdentifier)
}

// AddItem appends a line item. Only a PENDING order accepts edits.
func (o *Order) AddItem(menuItem MenuItem, quantity int, instructions string) error {
	if o.status != OrderStatusPending {
		return fmt.Errorf("order %d is %s: %w", o.ID, o.status, ErrOrderLocked)
	}
	if !menuItem.Available {
		return fmt.Errorf("%s: %w", menuItem.Name, ErrItemUnavailable)
	}
	o.items = append(o.items, NewOrderItem(menuItem, quantity, instructions))
	o.recalculate()
	return nil
}

// RemoveItem is a no-op returning false when index is out of range or the order is locked.
func (o *Order) RemoveItem(index int) bool {
	if !o.editable(index) {
		return false
	}
	o.items = append(o.items[:index], o.items[index+1:]...)
	o.recalculate()
	return true
}

func (o *Order) UpdateItemQuantity(index, quantity int) bool {
	if !o.editable(index) {
		return false
	}
	o.items[index].SetQuantity(quantity)
	o.recalculate()
	return true
}

func (o *Order) SetItemInstructions(index int, instructions string) bool {
	if !o.editable(index) {
		return false
	}
	o.items[index].SpecialInstructions = instructions
	return true
}

// TransitionTo moves the order along the status table.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !CanTransition(o.status, next) {
		return fmt.Errorf("order %d %s -> %s: %w", o.ID, o.status, next, ErrInvalidTransition)
	}
	o.status = next
	return nil
}

func (o *Order) editable(index int) bool {
	return o.status == OrderStatusPending && index >= 0 && index < len(o.items)
}

func (o *Order) recalculate() {
	subtotal := 0.0
	for _, item := range o.items {
		subtotal += item.TotalPrice()
	}
	o.subtotal = subtotal
	o.tax = subtotal * TaxRate
	o.total = o.subtotal + o.tax
}

// OrderSnapshot is an immutable copy of an order used in events and responses.
type OrderSnapshot struct {
	ID              int         `json:"order_id"`
	TableIdentifier string      `json:"table_identifier"`
	Type            OrderType   `json:"order_type"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		ID:              o.ID,
		TableIdentifier: o.TableIdentifier,
		Type:            o.Type(),
		Status:          o.status,
		Items:           o.Items(),
		Subtotal:        o.subtotal,
		Tax:             o.tax,
		Total:           o.total,
		CreatedAt:       o.CreatedAt,
	}
}

func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Snapshot())
}
