package models

import (
	"fmt"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodMobilePay  PaymentMethod = "MOBILE_PAY"
	PaymentMethodGiftCard   PaymentMethod = "GIFT_CARD"
)

var transactionPrefixes = map[PaymentMethod]string{
	PaymentMethodCash:       "CASH",
	PaymentMethodCreditCard: "CC",
	PaymentMethodDebitCard:  "DC",
	PaymentMethodMobilePay:  "MP",
	PaymentMethodGiftCard:   "GC",
}

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCreditCard,
		PaymentMethodDebitCard,
		PaymentMethodMobilePay,
		PaymentMethodGiftCard,
	}
}

// TransactionPrefix returns "" for methods the processor does not know.
func (m PaymentMethod) TransactionPrefix() string {
	return transactionPrefixes[m]
}

func (m PaymentMethod) Supported() bool {
	_, ok := transactionPrefixes[m]
	return ok
}

// ParsePaymentMethod normalizes "credit card", "credit_card" and "CREDIT_CARD".
// Unknown methods are returned as-is so the processor can reject them.
func ParsePaymentMethod(s string) PaymentMethod {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	return PaymentMethod(strings.ReplaceAll(normalized, " ", "_"))
}

// PaymentResult is appended to the ledger whether or not the payment went through.
type PaymentResult struct {
	Success         bool          `json:"success"`
	TransactionID   string        `json:"transaction_id"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	AmountProcessed float64       `json:"amount_processed"`
	Tip             float64       `json:"tip"`
	Method          PaymentMethod `json:"method"`
	OrderID         int           `json:"order_id"`
	Timestamp       time.Time     `json:"timestamp"`
}

// SettledAmount is the part of AmountProcessed that pays down the order.
func (r PaymentResult) SettledAmount() float64 {
	if !r.Success {
		return 0
	}
	return r.AmountProcessed - r.Tip
}

func (r PaymentResult) String() string {
	if r.Success {
		return fmt.Sprintf("%s %s %.2f", r.TransactionID, r.Method, r.AmountProcessed)
	}
	return fmt.Sprintf("%s failed: %s", r.Method, r.ErrorMessage)
}
