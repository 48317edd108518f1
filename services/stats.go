package services

import (
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type TransactionStats struct {
	Total          int                          `json:"total"`
	Successful     int                          `json:"successful"`
	Failed         int                          `json:"failed"`
	TotalProcessed float64                      `json:"total_processed"`
	TotalTips      float64                      `json:"total_tips"`
	ByMethod       map[models.PaymentMethod]int `json:"by_method"`
	FormattedTotal string                       `json:"formatted_total"`
}

type KitchenStats struct {
	QueueLength       int  `json:"queue_length"`
	EstimatedWaitTime int  `json:"estimated_wait_time"`
	IsBusy            bool `json:"is_busy"`
}

type BusinessStats struct {
	ActiveOrders      int                        `json:"active_orders"`
	CompletedOrders   int                        `json:"completed_orders"`
	CancelledOrders   int                        `json:"cancelled_orders"`
	ActiveByType      map[models.OrderType]int   `json:"active_by_type"`
	ActiveByStatus    map[models.OrderStatus]int `json:"active_by_status"`
	CompletedByType   map[models.OrderType]int   `json:"completed_by_type"`
	Transactions      TransactionStats           `json:"transactions"`
	Kitchen           KitchenStats               `json:"kitchen"`
	AverageOrderValue float64                    `json:"average_order_value"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// GetBusinessStats aggregates current state without changing it.
func (s *POSService) GetBusinessStats() BusinessStats {
	defer s.rlock()()

	stats := BusinessStats{
		ActiveByType:    make(map[models.OrderType]int),
		ActiveByStatus:  make(map[models.OrderStatus]int),
		CompletedByType: make(map[models.OrderType]int),
		Transactions:    s.transactionStats(),
		Kitchen: KitchenStats{
			QueueLength:       s.kitchen.QueueLength(),
			EstimatedWaitTime: s.kitchen.GetEstimatedWaitTime(),
			IsBusy:            s.kitchen.IsKitchenBusy(),
		},
		GeneratedAt: s.now(),
	}

	for _, o := range s.orders.GetActiveOrders() {
		stats.ActiveOrders++
		stats.ActiveByType[o.Type()]++
		stats.ActiveByStatus[o.Status()]++
	}

	servedValue := 0.0
	for _, o := range s.orders.CompletedOrders() {
		if o.Status() == models.OrderStatusCancelled {
			stats.CancelledOrders++
			continue
		}
		stats.CompletedOrders++
		stats.CompletedByType[o.Type()]++
		servedValue += o.Total()
	}
	if stats.CompletedOrders > 0 {
		stats.AverageOrderValue = utils.RoundMoney(servedValue / float64(stats.CompletedOrders))
	}
	return stats
}

func (s *POSService) transactionStats() TransactionStats {
	ts := TransactionStats{ByMethod: make(map[models.PaymentMethod]int)}
	for _, r := range s.payments.TransactionHistory() {
		ts.Total++
		if !r.Success {
			ts.Failed++
			continue
		}
		ts.Successful++
		ts.TotalProcessed += r.AmountProcessed
		ts.TotalTips += r.Tip
		ts.ByMethod[r.Method]++
	}
	ts.TotalProcessed = utils.RoundMoney(ts.TotalProcessed)
	ts.TotalTips = utils.RoundMoney(ts.TotalTips)
	ts.FormattedTotal = utils.FormatCurrency(ts.TotalProcessed)
	return ts
}
