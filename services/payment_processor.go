package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	DefaultCardSuccessRate = 0.9
	// MaxAmountFactor leaves room for a tip folded into the charged amount.
	MaxAmountFactor    = 1.5
	firstTransactionID = 1000
)

// Payment error messages recorded on failed results.
const (
	MsgCardDeclined       = "Card declined"
	MsgUnsupportedMethod  = "Unsupported payment method"
	MsgInvalidAmount      = "Invalid payment amount"
	MsgInvalidTip         = "Invalid tip amount"
	MsgOrderMissing       = "Order not found"
	MsgPrePaymentRejected = "Payment rejected by pre-payment check"
	MsgRefundUnsupported  = "Refund processing not implemented"
)

type SplitEntry struct {
	Method models.PaymentMethod `json:"method"`
	Amount float64              `json:"amount"`
}

type PaymentOption func(*PaymentProcessor)

func WithLedger(ledger AppendLog[models.PaymentResult]) PaymentOption {
	return func(p *PaymentProcessor) { p.ledger = ledger }
}

func WithPaymentHooks(hooks PaymentHooks) PaymentOption {
	return func(p *PaymentProcessor) { p.hooks = hooks }
}

func WithCardSuccessRate(rate float64) PaymentOption {
	return func(p *PaymentProcessor) {
		if rate >= 0 && rate <= 1 {
			p.cardSuccessRate = rate
		}
	}
}

// WithRandom replaces the source used to simulate the card gateway.
// It must return values in [0, 1).
func WithRandom(random func() float64) PaymentOption {
	return func(p *PaymentProcessor) { p.random = random }
}

// WithPaymentEvents publishes initiated/completed/failed events for every
// payment attempt against a known order.
func WithPaymentEvents(publisher events.Publisher) PaymentOption {
	return func(p *PaymentProcessor) { p.publisher = publisher }
}

func WithPaymentClock(now func() time.Time) PaymentOption {
	return func(p *PaymentProcessor) { p.now = now }
}

// PaymentProcessor settles payments against orders. It never changes the
// order; callers decide what a successful payment means for it.
type PaymentProcessor struct {
	ledger          AppendLog[models.PaymentResult]
	hooks           PaymentHooks
	publisher       events.Publisher
	cardSuccessRate float64
	random          func() float64
	now             func() time.Time
	nextTxn         int
}

func NewPaymentProcessor(opts ...PaymentOption) *PaymentProcessor {
	p := &PaymentProcessor{
		ledger:          NewMemoryLog[models.PaymentResult](),
		cardSuccessRate: DefaultCardSuccessRate,
		random:          rand.Float64,
		now:             time.Now,
		nextTxn:         firstTransactionID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidatePaymentAmount accepts 0 < amount <= 1.5 x order total.
func (p *PaymentProcessor) ValidatePaymentAmount(order *models.Order, amount float64) bool {
	if order == nil {
		return false
	}
	return amount > 0 && amount <= order.Total()*MaxAmountFactor
}

func (p *PaymentProcessor) ProcessPayment(order *models.Order, method models.PaymentMethod, amount, tip float64) models.PaymentResult {
	result := models.PaymentResult{Method: method, Timestamp: p.now()}
	if order != nil {
		p.publish(events.PaymentInitiated{OrderID: order.ID, Method: method, Amount: amount, Tip: tip})
	}

	switch {
	case order == nil:
		result.ErrorMessage = MsgOrderMissing
	case p.hooks.PrePayment != nil && !p.hooks.PrePayment(order, method, amount):
		result.OrderID = order.ID
		result.ErrorMessage = MsgPrePaymentRejected
	case !p.ValidatePaymentAmount(order, amount):
		result.OrderID = order.ID
		result.ErrorMessage = MsgInvalidAmount
	case tip < 0:
		result.OrderID = order.ID
		result.ErrorMessage = MsgInvalidTip
	default:
		result.OrderID = order.ID
		p.settle(&result, amount, tip)
	}

	p.ledger.Append(result)

	if result.Success {
		utils.InfoLogger.WithField("transaction_id", result.TransactionID).
			Infof("Order %d paid %s by %s", result.OrderID, utils.FormatCurrency(result.AmountProcessed), method)
		p.publish(events.PaymentCompleted{Result: result})
		if p.hooks.OnSuccess != nil {
			p.hooks.OnSuccess(result)
		}
	} else {
		utils.InfoLogger.WithField("method", method).
			Infof("Payment for order %d failed: %s", result.OrderID, result.ErrorMessage)
		p.publish(events.PaymentFailed{Result: result})
		if p.hooks.OnFailure != nil {
			p.hooks.OnFailure(result)
		}
	}
	return result
}

// ProcessSplitPayment runs each entry as its own payment with no tip. Whether
// the entries add up to the order total is the caller's business.
func (p *PaymentProcessor) ProcessSplitPayment(order *models.Order, entries []SplitEntry) []models.PaymentResult {
	results := make([]models.PaymentResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, p.ProcessPayment(order, e.Method, e.Amount, 0))
	}
	return results
}

// ProcessRefund always reports failure; refunds are not supported.
func (p *PaymentProcessor) ProcessRefund(transactionID string, amount float64) models.PaymentResult {
	result := models.PaymentResult{
		ErrorMessage: MsgRefundUnsupported,
		Timestamp:    p.now(),
	}
	for _, r := range p.ledger.All() {
		if r.TransactionID != "" && r.TransactionID == transactionID {
			result.Method = r.Method
			result.OrderID = r.OrderID
			break
		}
	}
	utils.InfoLogger.Infof("Refund of %s for %s rejected: %s", utils.FormatCurrency(amount), transactionID, MsgRefundUnsupported)
	p.publish(events.RefundProcessed{Result: result})
	return result
}

func (p *PaymentProcessor) TransactionHistory() []models.PaymentResult {
	return p.ledger.All()
}

func (p *PaymentProcessor) TransactionsForOrder(orderID int) []models.PaymentResult {
	var out []models.PaymentResult
	for _, r := range p.ledger.All() {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out
}

// AmountPaid sums successful payments for the order, tips excluded.
func (p *PaymentProcessor) AmountPaid(orderID int) float64 {
	paid := 0.0
	for _, r := range p.TransactionsForOrder(orderID) {
		paid += r.SettledAmount()
	}
	return paid
}

func (p *PaymentProcessor) publish(ev events.Event) {
	if p.publisher != nil {
		p.publisher.Publish(ev.Topic(), ev)
	}
}

func (p *PaymentProcessor) settle(result *models.PaymentResult, amount, tip float64) {
	switch result.Method {
	case models.PaymentMethodCash, models.PaymentMethodMobilePay:
		p.approve(result, amount+tip, tip)
	case models.PaymentMethodCreditCard, models.PaymentMethodDebitCard:
		if p.random() < p.cardSuccessRate {
			p.approve(result, amount+tip, tip)
			return
		}
		result.ErrorMessage = MsgCardDeclined
	case models.PaymentMethodGiftCard:
		// gift cards do not carry tips
		p.approve(result, amount, 0)
	default:
		result.ErrorMessage = MsgUnsupportedMethod
	}
}

func (p *PaymentProcessor) approve(result *models.PaymentResult, processed, tip float64) {
	result.Success = true
	result.AmountProcessed = processed
	result.Tip = tip
	result.TransactionID = fmt.Sprintf("%s-%06d", result.Method.TransactionPrefix(), p.nextTxn)
	p.nextTxn++
}
