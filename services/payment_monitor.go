package services

import (
	"sync"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// PaymentMetrics holds payment counters collected from the event bus
type PaymentMetrics struct {
	TotalTransactions  int64   `json:"total_transactions"`
	SuccessfulPayments int64   `json:"successful_payments"`
	FailedPayments     int64   `json:"failed_payments"`
	PendingPayments    int64   `json:"pending_payments"`
	DeclinedCards      int64   `json:"declined_cards"`
	RefundRequests     int64   `json:"refund_requests"`
	TotalProcessed     float64 `json:"total_processed"`
	RetryQueue         []int   `json:"retry_queue"`
}

// PaymentMonitor watches payment events and keeps the orders whose last
// attempt failed in a retry queue until a later payment succeeds
type PaymentMonitor struct {
	metrics    PaymentMetrics
	retryQueue []int
	handles    []events.Handle
	bus        *events.EventManager
	mutex      sync.Mutex
}

func NewPaymentMonitor() *PaymentMonitor {
	return &PaymentMonitor{
		retryQueue: make([]int, 0),
	}
}

// Attach subscribes the monitor to the payment topics of the bus
func (pm *PaymentMonitor) Attach(bus *events.EventManager) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.bus = bus
	pm.handles = append(pm.handles,
		bus.Subscribe(events.TopicPaymentInitiated, pm.handle),
		bus.Subscribe(events.TopicPaymentCompleted, pm.handle),
		bus.Subscribe(events.TopicPaymentFailed, pm.handle),
		bus.Subscribe(events.TopicPaymentRefundProcessed, pm.handle),
	)
	utils.InfoLogger.Info("Payment monitor started")
}

// Detach removes every subscription made by Attach
func (pm *PaymentMonitor) Detach() {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.bus == nil {
		return
	}
	for _, h := range pm.handles {
		pm.bus.Unsubscribe(h)
	}
	pm.handles = nil
	pm.bus = nil
}

func (pm *PaymentMonitor) handle(ev events.Event) error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	switch e := ev.(type) {
	case events.PaymentInitiated:
		pm.metrics.PendingPayments++
	case events.PaymentCompleted:
		pm.resolve(e.Result)
		pm.metrics.SuccessfulPayments++
		pm.metrics.TotalProcessed = utils.RoundMoney(pm.metrics.TotalProcessed + e.Result.AmountProcessed)
		pm.removeFromRetryQueue(e.Result.OrderID)
	case events.PaymentFailed:
		pm.resolve(e.Result)
		pm.metrics.FailedPayments++
		if e.Result.ErrorMessage == MsgCardDeclined {
			pm.metrics.DeclinedCards++
		}
		pm.addToRetryQueue(e.Result.OrderID)
	case events.RefundProcessed:
		pm.metrics.RefundRequests++
	}
	return nil
}

func (pm *PaymentMonitor) resolve(result models.PaymentResult) {
	pm.metrics.TotalTransactions++
	// a nil order never raises the initiated event
	if result.OrderID != 0 && pm.metrics.PendingPayments > 0 {
		pm.metrics.PendingPayments--
	}
}

func (pm *PaymentMonitor) addToRetryQueue(orderID int) {
	if orderID == 0 {
		return
	}
	for _, id := range pm.retryQueue {
		if id == orderID {
			return
		}
	}
	pm.retryQueue = append(pm.retryQueue, orderID)
	utils.InfoLogger.Infof("Order %d added to payment retry queue", orderID)
}

func (pm *PaymentMonitor) removeFromRetryQueue(orderID int) {
	for i, id := range pm.retryQueue {
		if id == orderID {
			pm.retryQueue = append(pm.retryQueue[:i], pm.retryQueue[i+1:]...)
			return
		}
	}
}

// GetMetrics returns a copy of the current metrics
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	m := pm.metrics
	m.RetryQueue = append([]int{}, pm.retryQueue...)
	return m
}
