package models

import (
	"fmt"
	"math"
	"time"
)

// Receipt is printed from an order and the payments recorded against it.
type Receipt struct {
	ReceiptNumber   string        `json:"receipt_number"`
	OrderID         int           `json:"order_id"`
	TableIdentifier string        `json:"table_identifier"`
	OrderStatus     string        `json:"order_status"`
	Subtotal        float64       `json:"subtotal"`
	Tax             float64       `json:"tax"`
	Total           float64       `json:"total"`
	AmountPaid      float64       `json:"amount_paid"`
	Tips            float64       `json:"tips"`
	Change          float64       `json:"change"`
	Remaining       float64       `json:"remaining"`
	PaymentStatus   string        `json:"payment_status"`
	Payments        []Payment     `json:"payments"`
	ReceiptItems    []ReceiptItem `json:"receipt_items"`
	CreatedAt       time.Time     `json:"created_at"`
}

type ReceiptItem struct {
	MenuID    int     `json:"menu_id"`
	MenuName  string  `json:"menu_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
	Notes     string  `json:"notes,omitempty"`
}

// Payment is one settled line on a receipt.
type Payment struct {
	PaymentMethod    PaymentMethod `json:"payment_method"`
	Amount           float64       `json:"amount"`
	Tip              float64       `json:"tip"`
	PaymentReference string        `json:"payment_reference"`
}

const (
	ReceiptPaid    = "PAID"
	ReceiptPartial = "PARTIAL"
	ReceiptUnpaid  = "UNPAID"
)

// NewReceipt lists successful payments only. Overpayment shows up as change.
func NewReceipt(order OrderSnapshot, results []PaymentResult, issuedAt time.Time) Receipt {
	r := Receipt{
		ReceiptNumber:   fmt.Sprintf("R-%s-%d", issuedAt.Format("20060102"), order.ID),
		OrderID:         order.ID,
		TableIdentifier: order.TableIdentifier,
		OrderStatus:     string(order.Status),
		Subtotal:        roundCents(order.Subtotal),
		Tax:             roundCents(order.Tax),
		Total:           roundCents(order.Total),
		CreatedAt:       issuedAt,
	}
	for _, item := range order.Items {
		r.ReceiptItems = append(r.ReceiptItems, ReceiptItem{
			MenuID:    item.MenuItem.ID,
			MenuName:  item.MenuItem.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.MenuItem.Price,
			Subtotal:  roundCents(item.TotalPrice()),
			Notes:     item.SpecialInstructions,
		})
	}
	for _, res := range results {
		if !res.Success || res.OrderID != order.ID {
			continue
		}
		r.Payments = append(r.Payments, Payment{
			PaymentMethod:    res.Method,
			Amount:           res.SettledAmount(),
			Tip:              res.Tip,
			PaymentReference: res.TransactionID,
		})
		r.AmountPaid += res.SettledAmount()
		r.Tips += res.Tip
	}
	r.AmountPaid = roundCents(r.AmountPaid)
	r.Tips = roundCents(r.Tips)

	diff := roundCents(r.AmountPaid - r.Total)
	switch {
	case r.AmountPaid == 0:
		r.PaymentStatus = ReceiptUnpaid
		r.Remaining = r.Total
	case diff >= 0:
		r.PaymentStatus = ReceiptPaid
		r.Change = diff
	default:
		r.PaymentStatus = ReceiptPartial
		r.Remaining = -diff
	}
	return r
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
