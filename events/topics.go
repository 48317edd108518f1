package events

import "github.com/yeremiapane/restaurant-pos/models"

const (
	TopicOrderCreated       = "order.created"
	TopicOrderModified      = "order.modified"
	TopicOrderCompleted     = "order.completed"
	TopicOrderCancelled     = "order.cancelled"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderSentToKitchen = "order.sent_to_kitchen"

	TopicKitchenStatusChanged    = "kitchen.status_changed"
	TopicKitchenQueueUpdated     = "kitchen.queue_updated"
	TopicKitchenBusyStateChanged = "kitchen.busy_state_changed"

	TopicPaymentInitiated       = "payment.initiated"
	TopicPaymentCompleted       = "payment.completed"
	TopicPaymentFailed          = "payment.failed"
	TopicPaymentRefundProcessed = "payment.refund_processed"
)

// Event is implemented by every payload the bus carries. Subscribers switch on
// the concrete type instead of casting loosely typed maps.
type Event interface {
	Topic() string
}

type OrderCreated struct {
	Order models.OrderSnapshot `json:"order"`
}

type OrderModified struct {
	Order models.OrderSnapshot `json:"order"`
}

type OrderCompleted struct {
	Order models.OrderSnapshot `json:"order"`
}

type OrderCancelled struct {
	Order models.OrderSnapshot `json:"order"`
}

type OrderStatusChanged struct {
	OrderID   int                `json:"order_id"`
	OldStatus models.OrderStatus `json:"old_status"`
	NewStatus models.OrderStatus `json:"new_status"`
}

type OrderSentToKitchen struct {
	Order  models.OrderSnapshot `json:"order"`
	Ticket models.KitchenTicket `json:"ticket"`
}

type KitchenStatusChanged struct {
	OrderID   int                  `json:"order_id"`
	OldStatus models.KitchenStatus `json:"old_status"`
	NewStatus models.KitchenStatus `json:"new_status"`
}

type KitchenQueueUpdated struct {
	QueueLength       int `json:"queue_length"`
	EstimatedWaitTime int `json:"estimated_wait_time"`
}

type KitchenBusyStateChanged struct {
	Busy        bool `json:"busy"`
	QueueLength int  `json:"queue_length"`
	Threshold   int  `json:"threshold"`
}

type PaymentInitiated struct {
	OrderID int                  `json:"order_id"`
	Method  models.PaymentMethod `json:"method"`
	Amount  float64              `json:"amount"`
	Tip     float64              `json:"tip"`
}

type PaymentCompleted struct {
	Result models.PaymentResult `json:"result"`
}

type PaymentFailed struct {
	Result models.PaymentResult `json:"result"`
}

type RefundProcessed struct {
	Result models.PaymentResult `json:"result"`
}

func (OrderCreated) Topic() string            { return TopicOrderCreated }
func (OrderModified) Topic() string           { return TopicOrderModified }
func (OrderCompleted) Topic() string          { return TopicOrderCompleted }
func (OrderCancelled) Topic() string          { return TopicOrderCancelled }
func (OrderStatusChanged) Topic() string      { return TopicOrderStatusChanged }
func (OrderSentToKitchen) Topic() string      { return TopicOrderSentToKitchen }
func (KitchenStatusChanged) Topic() string    { return TopicKitchenStatusChanged }
func (KitchenQueueUpdated) Topic() string     { return TopicKitchenQueueUpdated }
func (KitchenBusyStateChanged) Topic() string { return TopicKitchenBusyStateChanged }
func (PaymentInitiated) Topic() string        { return TopicPaymentInitiated }
func (PaymentCompleted) Topic() string        { return TopicPaymentCompleted }
func (PaymentFailed) Topic() string           { return TopicPaymentFailed }
func (RefundProcessed) Topic() string         { return TopicPaymentRefundProcessed }
