package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	DefaultBusyThreshold = 5

	basePrepMinutes         = 5
	minPrepMinutes          = 5
	coordinationPenalty     = 5
	coordinationItemCount   = 3
	newOrderBaseWaitMinutes = 10
	readyRemainingMinutes   = 1
)

var categoryPrepMinutes = map[models.Category]int{
	models.CategoryAppetizer:  8,
	models.CategoryMainCourse: 15,
	models.CategoryDessert:    6,
	models.CategoryBeverage:   2,
	models.CategorySpecial:    20,
}

type KitchenOption func(*KitchenInterface)

func WithBroadcaster(b KitchenBroadcaster) KitchenOption {
	return func(k *KitchenInterface) {
		if b != nil {
			k.broadcaster = b
		}
	}
}

func WithBusyThreshold(threshold int) KitchenOption {
	return func(k *KitchenInterface) {
		if threshold > 0 {
			k.threshold = threshold
		}
	}
}

func WithKitchenClock(now func() time.Time) KitchenOption {
	return func(k *KitchenInterface) { k.now = now }
}

// TicketStatus is one row of the kitchen queue board.
type TicketStatus struct {
	OrderID             int      `json:"order_id"`
	TableIdentifier     string   `json:"table_identifier"`
	Status              int      `json:"status"`
	StatusName          string   `json:"status_name"`
	EstimatedPrepTime   int      `json:"estimated_prep_time"`
	ElapsedMinutes      int      `json:"elapsed_minutes"`
	Items               []string `json:"items"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

type KitchenQueueStatus struct {
	Tickets           []TicketStatus `json:"tickets"`
	QueueLength       int            `json:"queue_length"`
	EstimatedWaitTime int            `json:"estimated_wait_time"`
	IsBusy            bool           `json:"is_busy"`
	LastUpdated       time.Time      `json:"last_updated"`
}

// KitchenInterface owns the live ticket queue. Tickets have their own
// lifecycle; only SendOrderToKitchen touches the Order it is given.
type KitchenInterface struct {
	tickets     []*models.KitchenTicket
	broadcaster KitchenBroadcaster
	publisher   events.Publisher
	threshold   int
	busy        bool
	now         func() time.Time
}

func NewKitchenInterface(publisher events.Publisher, opts ...KitchenOption) *KitchenInterface {
	k := &KitchenInterface{
		broadcaster: NopBroadcaster{},
		publisher:   publisher,
		threshold:   DefaultBusyThreshold,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// SendOrderToKitchen queues a ticket for a pending order. The order moves to
// SENT_TO_KITCHEN only once the broadcast went out; on a failed broadcast the
// ticket is withdrawn and the order is left as it was.
func (k *KitchenInterface) SendOrderToKitchen(order *models.Order) error {
	if order == nil || order.IsEmpty() {
		return ErrEmptyOrder
	}
	if !models.CanTransition(order.Status(), models.OrderStatusSentToKitchen) {
		return fmt.Errorf("order %d is %s: %w", order.ID, order.Status(), models.ErrInvalidTransition)
	}
	if _, ok := k.find(order.ID); ok {
		return fmt.Errorf("order %d: %w", order.ID, ErrTicketExists)
	}

	ticket := models.NewKitchenTicket(order, EstimatePreparationTime(order), k.now())
	k.tickets = append(k.tickets, &ticket)

	if err := k.broadcast(models.KitchenMessageNewOrder, ticket); err != nil {
		k.tickets = k.tickets[:len(k.tickets)-1]
		utils.ErrorLogger.Errorf("Kitchen broadcast for order %d failed: %v", order.ID, err)
		return fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
	}

	old := order.Status()
	if err := order.TransitionTo(models.OrderStatusSentToKitchen); err != nil {
		k.tickets = k.tickets[:len(k.tickets)-1]
		return err
	}

	utils.InfoLogger.Infof("Order %d sent to kitchen (%d min, queue %d)", order.ID, ticket.EstimatedPrepTime, len(k.tickets))
	k.publisher.Publish(events.TopicOrderStatusChanged, events.OrderStatusChanged{
		OrderID:   order.ID,
		OldStatus: old,
		NewStatus: models.OrderStatusSentToKitchen,
	})
	k.publisher.Publish(events.TopicOrderSentToKitchen, events.OrderSentToKitchen{
		Order:  order.Snapshot(),
		Ticket: ticket.Copy(),
	})
	k.queueChanged()
	return nil
}

// UpdateKitchenStatus moves a ticket forward. SERVED removes it from the queue.
// A failed status broadcast is logged; the ticket change stands.
func (k *KitchenInterface) UpdateKitchenStatus(orderID int, status models.KitchenStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown kitchen status %d", int(status))
	}
	i, ok := k.find(orderID)
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, ErrTicketNotFound)
	}
	ticket := k.tickets[i]
	old := ticket.Status
	if status < old {
		return fmt.Errorf("order %d %s -> %s: %w", orderID, old, status, ErrKitchenRegression)
	}
	ticket.Status = status

	if err := k.broadcast(models.KitchenMessageStatusUpdate, *ticket); err != nil {
		utils.ErrorLogger.Warnf("Kitchen status broadcast for order %d failed: %v", orderID, err)
	}
	if status == models.KitchenStatusServed {
		k.tickets = append(k.tickets[:i], k.tickets[i+1:]...)
	}

	k.publisher.Publish(events.TopicKitchenStatusChanged, events.KitchenStatusChanged{
		OrderID:   orderID,
		OldStatus: old,
		NewStatus: status,
	})
	k.queueChanged()
	return nil
}

// RemoveTicket drops a ticket without broadcasting, e.g. after a cancellation.
func (k *KitchenInterface) RemoveTicket(orderID int) bool {
	i, ok := k.find(orderID)
	if !ok {
		return false
	}
	k.tickets = append(k.tickets[:i], k.tickets[i+1:]...)
	utils.InfoLogger.Infof("Kitchen ticket for order %d removed", orderID)
	k.queueChanged()
	return true
}

func (k *KitchenInterface) GetTicketByOrderID(orderID int) (models.KitchenTicket, bool) {
	i, ok := k.find(orderID)
	if !ok {
		return models.KitchenTicket{}, false
	}
	return k.tickets[i].Copy(), true
}

// Tickets returns copies in queue order.
func (k *KitchenInterface) Tickets() []models.KitchenTicket {
	out := make([]models.KitchenTicket, 0, len(k.tickets))
	for _, t := range k.tickets {
		out = append(out, t.Copy())
	}
	return out
}

func (k *KitchenInterface) QueueLength() int {
	return len(k.tickets)
}

func (k *KitchenInterface) Threshold() int {
	return k.threshold
}

// GetEstimatedWaitTime is the wait a newly sent order would face, in minutes.
func (k *KitchenInterface) GetEstimatedWaitTime() int {
	if len(k.tickets) == 0 {
		return 0
	}
	total := 0
	for _, t := range k.tickets {
		total += remainingMinutes(t)
	}
	return total + newOrderBaseWaitMinutes
}

func (k *KitchenInterface) IsKitchenBusy() bool {
	return k.IsKitchenBusyAt(k.threshold)
}

func (k *KitchenInterface) IsKitchenBusyAt(threshold int) bool {
	return len(k.tickets) > threshold
}

// QueueStatus is a read-only projection of the queue.
func (k *KitchenInterface) QueueStatus() KitchenQueueStatus {
	now := k.now()
	rows := make([]TicketStatus, 0, len(k.tickets))
	for _, t := range k.tickets {
		elapsed := int(now.Sub(t.Timestamp).Minutes())
		if elapsed < 0 {
			elapsed = 0
		}
		rows = append(rows, TicketStatus{
			OrderID:             t.OrderID,
			TableIdentifier:     t.TableIdentifier,
			Status:              int(t.Status),
			StatusName:          t.Status.Name(),
			EstimatedPrepTime:   t.EstimatedPrepTime,
			ElapsedMinutes:      elapsed,
			Items:               append([]string(nil), t.Items...),
			SpecialInstructions: t.SpecialInstructions,
		})
	}
	return KitchenQueueStatus{
		Tickets:           rows,
		QueueLength:       len(k.tickets),
		EstimatedWaitTime: k.GetEstimatedWaitTime(),
		IsBusy:            k.IsKitchenBusy(),
		LastUpdated:       now,
	}
}

// EstimatePreparationTime sums per-category minutes times quantity, adds a
// penalty for orders with more than three lines and never returns less than 5.
func EstimatePreparationTime(order *models.Order) int {
	if order == nil {
		return minPrepMinutes
	}
	items := order.Items()
	total := 0
	for _, item := range items {
		minutes, ok := categoryPrepMinutes[item.MenuItem.Category]
		if !ok {
			minutes = basePrepMinutes
		}
		total += minutes * item.Quantity
	}
	if len(items) > coordinationItemCount {
		total += coordinationPenalty
	}
	return max(total, minPrepMinutes)
}

func remainingMinutes(t *models.KitchenTicket) int {
	switch t.Status {
	case models.KitchenStatusOrderReceived:
		return t.EstimatedPrepTime
	case models.KitchenStatusPrepStarted:
		return max(t.EstimatedPrepTime/2, 0)
	case models.KitchenStatusReadyForPickup:
		return readyRemainingMinutes
	}
	return 0
}

func (k *KitchenInterface) find(orderID int) (int, bool) {
	for i, t := range k.tickets {
		if t.OrderID == orderID {
			return i, true
		}
	}
	return -1, false
}

func (k *KitchenInterface) broadcast(kind string, ticket models.KitchenTicket) error {
	return k.broadcaster.Broadcast(models.KitchenMessage{
		ID:         uuid.NewString(),
		Type:       kind,
		Ticket:     ticket.Copy(),
		StatusName: ticket.Status.Name(),
		SentAt:     k.now(),
	})
}

// queueChanged publishes the queue update and, when the threshold was crossed
// in either direction, a single busy-state change.
func (k *KitchenInterface) queueChanged() {
	k.publisher.Publish(events.TopicKitchenQueueUpdated, events.KitchenQueueUpdated{
		QueueLength:       len(k.tickets),
		EstimatedWaitTime: k.GetEstimatedWaitTime(),
	})

	busy := k.IsKitchenBusy()
	if busy == k.busy {
		return
	}
	k.busy = busy
	if busy {
		utils.InfoLogger.Warnf("Kitchen is busy: %d tickets queued (threshold %d)", len(k.tickets), k.threshold)
	} else {
		utils.InfoLogger.Infof("Kitchen is free again: %d tickets queued", len(k.tickets))
	}
	k.publisher.Publish(events.TopicKitchenBusyStateChanged, events.KitchenBusyStateChanged{
		Busy:        busy,
		QueueLength: len(k.tickets),
		Threshold:   k.threshold,
	})
}
