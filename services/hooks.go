package services

import "github.com/yeremiapane/restaurant-pos/models"

// OrderHooks are optional callbacks run by OrderManager after the matching
// event has been queued.
type OrderHooks struct {
	OnCreated   func(order *models.Order)
	OnCompleted func(order *models.Order)
	OnCancelled func(order *models.Order)
}

// PaymentHooks customise the payment pipeline without touching it.
// PrePayment returning false rejects the payment before validation.
type PaymentHooks struct {
	PrePayment func(order *models.Order, method models.PaymentMethod, amount float64) bool
	OnSuccess  func(result models.PaymentResult)
	OnFailure  func(result models.PaymentResult)
}
