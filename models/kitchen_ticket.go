package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type KitchenStatus int

const (
	KitchenStatusOrderReceived KitchenStatus = iota
	KitchenStatusPrepStarted
	KitchenStatusReadyForPickup
	KitchenStatusServed
)

var kitchenStatusNames = map[KitchenStatus]string{
	KitchenStatusOrderReceived:  "Order Received",
	KitchenStatusPrepStarted:    "Prep Started",
	KitchenStatusReadyForPickup: "Ready for Pickup",
	KitchenStatusServed:         "Served",
}

var kitchenStatusCodes = map[string]KitchenStatus{
	"ORDER_RECEIVED":   KitchenStatusOrderReceived,
	"PREP_STARTED":     KitchenStatusPrepStarted,
	"READY_FOR_PICKUP": KitchenStatusReadyForPickup,
	"SERVED":           KitchenStatusServed,
}

func (s KitchenStatus) Name() string {
	if name, ok := kitchenStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

func (s KitchenStatus) String() string {
	for code, status := range kitchenStatusCodes {
		if status == s {
			return code
		}
	}
	return s.Name()
}

func (s KitchenStatus) Valid() bool {
	_, ok := kitchenStatusNames[s]
	return ok
}

// ParseKitchenStatus accepts the code ("PREP_STARTED") or the numeric value ("1").
func ParseKitchenStatus(s string) (KitchenStatus, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if status, ok := kitchenStatusCodes[code]; ok {
		return status, nil
	}
	if n, err := strconv.Atoi(code); err == nil && KitchenStatus(n).Valid() {
		return KitchenStatus(n), nil
	}
	return 0, fmt.Errorf("unknown kitchen status %q", s)
}

// KitchenTicket is the kitchen's own view of an order. Changing it never
// changes the Order it was built from.
type KitchenTicket struct {
	OrderID             int           `json:"order_id"`
	TableIdentifier     string        `json:"table_identifier"`
	Items               []string      `json:"items"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
	Status              KitchenStatus `json:"status"`
	EstimatedPrepTime   int           `json:"estimated_prep_time"`
}

// NewKitchenTicket formats each line as "Nx Name" and joins non-empty
// instructions with "; ".
func NewKitchenTicket(order *Order, prepMinutes int, now time.Time) KitchenTicket {
	items := order.Items()
	lines := make([]string, 0, len(items))
	var notes []string
	for _, item := range items {
		lines = append(lines, item.KitchenLine())
		if strings.TrimSpace(item.SpecialInstructions) != "" {
			notes = append(notes, item.SpecialInstructions)
		}
	}
	return KitchenTicket{
		OrderID:             order.ID,
		TableIdentifier:     order.TableIdentifier,
		Items:               lines,
		SpecialInstructions: strings.Join(notes, "; "),
		Timestamp:           now,
		Status:              KitchenStatusOrderReceived,
		EstimatedPrepTime:   prepMinutes,
	}
}

// Copy returns a ticket that shares no slice with the receiver.
func (t KitchenTicket) Copy() KitchenTicket {
	t.Items = append([]string(nil), t.Items...)
	return t
}

const (
	KitchenMessageNewOrder     = "new_order"
	KitchenMessageStatusUpdate = "status_update"
)

// KitchenMessage is what gets broadcast to kitchen displays and printers.
type KitchenMessage struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	Ticket     KitchenTicket `json:"ticket"`
	StatusName string        `json:"status_name"`
	SentAt     time.Time     `json:"sent_at"`
}
