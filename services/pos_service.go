package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type Options struct {
	Menu             []models.MenuItem
	MaxTableNumber   int
	DeliveryChannels []string
	BusyThreshold    int
	CardSuccessRate  float64
	Broadcaster      KitchenBroadcaster
	Ledger           AppendLog[models.PaymentResult]
	History          AppendLog[*models.Order]
	OrderHooks       OrderHooks
	PaymentHooks     PaymentHooks
	Random           func() float64
	Clock            func() time.Time
}

// Balance is what is left to pay on an order, tips excluded.
type Balance struct {
	OrderID   int     `json:"order_id"`
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
}

// POSService is the single entry point for every order, kitchen and payment
// mutation. Actions run one at a time, each together with the delivery of the
// events it raised. Handlers run outside the state mutex, so they may call the
// read methods; starting another action from a handler deadlocks.
type POSService struct {
	actions  sync.Mutex
	mu       sync.Mutex
	bus      *events.EventManager
	deferred *events.Deferred

	menu     map[int]models.MenuItem
	orders   *OrderManager
	payments *PaymentProcessor
	kitchen  *KitchenInterface
	current  *models.Order
	now      func() time.Time
}

func NewPOSService(bus *events.EventManager, opts Options) *POSService {
	if bus == nil {
		bus = events.NewEventManager()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	deferred := events.NewDeferred(bus)

	paymentOpts := []PaymentOption{
		WithPaymentHooks(opts.PaymentHooks),
		WithPaymentEvents(deferred),
		WithPaymentClock(opts.Clock),
	}
	if opts.Ledger != nil {
		paymentOpts = append(paymentOpts, WithLedger(opts.Ledger))
	}
	if opts.CardSuccessRate > 0 {
		paymentOpts = append(paymentOpts, WithCardSuccessRate(opts.CardSuccessRate))
	}
	if opts.Random != nil {
		paymentOpts = append(paymentOpts, WithRandom(opts.Random))
	}

	s := &POSService{
		bus:      bus,
		deferred: deferred,
		menu:     make(map[int]models.MenuItem, len(opts.Menu)),
		orders: NewOrderManager(deferred, OrderManagerOptions{
			MaxTableNumber:   opts.MaxTableNumber,
			DeliveryChannels: opts.DeliveryChannels,
			History:          opts.History,
			Hooks:            opts.OrderHooks,
			Clock:            opts.Clock,
		}),
		payments: NewPaymentProcessor(paymentOpts...),
		kitchen: NewKitchenInterface(deferred,
			WithBroadcaster(opts.Broadcaster),
			WithBusyThreshold(opts.BusyThreshold),
			WithKitchenClock(opts.Clock),
		),
		now: opts.Clock,
	}
	for _, item := range opts.Menu {
		if err := item.Validate(); err != nil {
			utils.ErrorLogger.Warnf("Skipping menu item %d: %v", item.ID, err)
			continue
		}
		item.Category, _ = models.ParseCategory(string(item.Category))
		s.menu[item.ID] = item
	}
	utils.InfoLogger.Infof("POS service ready with %d menu items", len(s.menu))
	return s
}

// Bus exposes the event manager so collaborators can subscribe.
func (s *POSService) Bus() *events.EventManager {
	return s.bus
}

// lock starts an action: defer s.lock()(). The returned func releases the
// state mutex, delivers the queued events and only then admits the next action.
func (s *POSService) lock() func() {
	s.actions.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.deferred.Flush()
		s.actions.Unlock()
	}
}

// rlock guards reads, which raise no events and never wait for delivery.
func (s *POSService) rlock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// ---- menu ----

// GetMenu returns every menu item ordered by id.
func (s *POSService) GetMenu() []models.MenuItem {
	defer s.rlock()()
	return s.menuWhere(func(models.MenuItem) bool { return true })
}

func (s *POSService) GetMenuByCategory(category models.Category) []models.MenuItem {
	defer s.rlock()()
	return s.menuWhere(func(m models.MenuItem) bool { return m.Category == category })
}

func (s *POSService) GetMenuItem(id int) (models.MenuItem, bool) {
	defer s.rlock()()
	item, ok := s.menu[id]
	return item, ok
}

func (s *POSService) AddMenuItem(item models.MenuItem) error {
	defer s.lock()()
	if err := item.Validate(); err != nil {
		return err
	}
	item.Category, _ = models.ParseCategory(string(item.Category))
	if _, exists := s.menu[item.ID]; exists {
		return fmt.Errorf("menu item %d: %w", item.ID, ErrDuplicateMenuItem)
	}
	s.menu[item.ID] = item
	utils.InfoLogger.Infof("Menu item %d (%s) added", item.ID, item.Name)
	return nil
}

// UpdateMenuItemPrice only affects orders that add the item afterwards.
func (s *POSService) UpdateMenuItemPrice(id int, price float64) error {
	defer s.lock()()
	if price < 0 {
		return ErrInvalidPrice
	}
	item, ok := s.menu[id]
	if !ok {
		return fmt.Errorf("menu item %d: %w", id, ErrMenuItemNotFound)
	}
	item.Price = price
	s.menu[id] = item
	return nil
}

func (s *POSService) SetMenuItemAvailability(id int, available bool) error {
	defer s.lock()()
	item, ok := s.menu[id]
	if !ok {
		return fmt.Errorf("menu item %d: %w", id, ErrMenuItemNotFound)
	}
	item.Available = available
	s.menu[id] = item
	return nil
}

func (s *POSService) menuWhere(keep func(models.MenuItem) bool) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- current order ----

// StartNewOrder opens an order for the table and makes it the current one.
func (s *POSService) StartNewOrder(tableIdentifier string) (models.OrderSnapshot, error) {
	defer s.lock()()
	if !s.orders.IsValidTableIdentifier(tableIdentifier) {
		return models.OrderSnapshot{}, fmt.Errorf("%q: %w", tableIdentifier, ErrInvalidTable)
	}
	s.current = s.orders.CreateOrder(tableIdentifier)
	utils.InfoLogger.Infof("Order %d started for %s", s.current.ID, s.current.TableIdentifier)
	return s.current.Snapshot(), nil
}

// SelectOrder makes an existing active order the current one.
func (s *POSService) SelectOrder(id int) (models.OrderSnapshot, error) {
	defer s.lock()()
	order, ok := s.orders.GetOrder(id)
	if !ok {
		return models.OrderSnapshot{}, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	s.current = order
	return order.Snapshot(), nil
}

func (s *POSService) CurrentOrder() (models.OrderSnapshot, bool) {
	defer s.rlock()()
	order, err := s.currentOrder()
	if err != nil {
		return models.OrderSnapshot{}, false
	}
	return order.Snapshot(), true
}

func (s *POSService) AddItemToCurrentOrder(menuID, quantity int, instructions string) (models.OrderSnapshot, error) {
	defer s.lock()()
	order, err := s.currentOrder()
	if err != nil {
		return models.OrderSnapshot{}, err
	}
	item, ok := s.menu[menuID]
	if !ok {
		return models.OrderSnapshot{}, fmt.Errorf("menu item %d: %w", menuID, ErrMenuItemNotFound)
	}
	if err := order.AddItem(item, quantity, instructions); err != nil {
		return models.OrderSnapshot{}, err
	}
	s.orders.NotifyOrderModified(order.ID)
	return order.Snapshot(), nil
}

// RemoveItemFromCurrentOrder is a no-op returning false for a bad index.
func (s *POSService) RemoveItemFromCurrentOrder(index int) (models.OrderSnapshot, bool) {
	defer s.lock()()
	order, err := s.currentOrder()
	if err != nil || !order.RemoveItem(index) {
		return s.snapshotOf(order), false
	}
	s.orders.NotifyOrderModified(order.ID)
	return order.Snapshot(), true
}

func (s *POSService) UpdateCurrentOrderItemQuantity(index, quantity int) (models.OrderSnapshot, bool) {
	defer s.lock()()
	order, err := s.currentOrder()
	if err != nil || !order.UpdateItemQuantity(index, quantity) {
		return s.snapshotOf(order), false
	}
	s.orders.NotifyOrderModified(order.ID)
	return order.Snapshot(), true
}

// ClearCurrentOrder forgets the current order. A still pending order with no
// items is cancelled so it does not linger in the active list.
func (s *POSService) ClearCurrentOrder() {
	defer s.lock()()
	if s.current == nil {
		return
	}
	if s.current.Status() == models.OrderStatusPending && s.current.IsEmpty() {
		if err := s.orders.CancelOrder(s.current.ID); err != nil {
			utils.ErrorLogger.Warnf("Dropping empty order %d: %v", s.current.ID, err)
		}
	}
	s.current = nil
}

// SendCurrentOrderToKitchen sends the current order and clears it on success.
func (s *POSService) SendCurrentOrderToKitchen() (models.KitchenTicket, error) {
	defer s.lock()()
	order, err := s.currentOrder()
	if err != nil {
		return models.KitchenTicket{}, err
	}
	ticket, err := s.sendToKitchen(order)
	if err != nil {
		return models.KitchenTicket{}, err
	}
	s.current = nil
	return ticket, nil
}

func (s *POSService) currentOrder() (*models.Order, error) {
	if s.current == nil {
		return nil, ErrNoCurrentOrder
	}
	if _, ok := s.orders.GetOrder(s.current.ID); !ok {
		s.current = nil
		return nil, ErrNoCurrentOrder
	}
	return s.current, nil
}

func (s *POSService) snapshotOf(order *models.Order) models.OrderSnapshot {
	if order == nil {
		return models.OrderSnapshot{}
	}
	return order.Snapshot()
}

// ---- orders and kitchen ----

func (s *POSService) SendOrderToKitchen(id int) (models.KitchenTicket, error) {
	defer s.lock()()
	order, ok := s.orders.GetOrder(id)
	if !ok {
		return models.KitchenTicket{}, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	ticket, err := s.sendToKitchen(order)
	if err != nil {
		return models.KitchenTicket{}, err
	}
	if s.current == order {
		s.current = nil
	}
	return ticket, nil
}

func (s *POSService) sendToKitchen(order *models.Order) (models.KitchenTicket, error) {
	if err := s.kitchen.SendOrderToKitchen(order); err != nil {
		return models.KitchenTicket{}, err
	}
	ticket, _ := s.kitchen.GetTicketByOrderID(order.ID)
	return ticket, nil
}

// kitchenToOrder maps kitchen progress onto the order lifecycle. SERVED is
// handled by completing the order.
var kitchenToOrder = map[models.KitchenStatus]models.OrderStatus{
	models.KitchenStatusPrepStarted:    models.OrderStatusPreparing,
	models.KitchenStatusReadyForPickup: models.OrderStatusReady,
}

// UpdateKitchenStatus moves the ticket and keeps the order status in step.
func (s *POSService) UpdateKitchenStatus(orderID int, status models.KitchenStatus) error {
	defer s.lock()()
	if err := s.kitchen.UpdateKitchenStatus(orderID, status); err != nil {
		return err
	}

	order, ok := s.orders.GetOrder(orderID)
	if !ok {
		utils.ErrorLogger.Warnf("Kitchen ticket %d has no active order", orderID)
		return nil
	}
	if status == models.KitchenStatusServed {
		if err := s.orders.CompleteOrder(orderID); err != nil {
			utils.ErrorLogger.Warnf("Completing order %d after service: %v", orderID, err)
		}
		return nil
	}
	next, ok := kitchenToOrder[status]
	if !ok || order.Status() == next {
		return nil
	}
	if err := s.orders.UpdateOrderStatus(orderID, next); err != nil {
		utils.ErrorLogger.Warnf("Order %d not moved to %s: %v", orderID, next, err)
	}
	return nil
}

// CompleteOrder serves the order and drops its kitchen ticket, if any.
func (s *POSService) CompleteOrder(id int) error {
	defer s.lock()()
	if err := s.orders.CompleteOrder(id); err != nil {
		return err
	}
	s.kitchen.RemoveTicket(id)
	return nil
}

// CancelOrder cancels the order and withdraws its kitchen ticket, if any.
func (s *POSService) CancelOrder(id int) error {
	defer s.lock()()
	if err := s.orders.CancelOrder(id); err != nil {
		return err
	}
	s.kitchen.RemoveTicket(id)
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return nil
}

func (s *POSService) RemoveKitchenTicket(orderID int) bool {
	defer s.lock()()
	return s.kitchen.RemoveTicket(orderID)
}

// GetOrder finds an order among active and finished orders.
func (s *POSService) GetOrder(id int) (models.OrderSnapshot, bool) {
	defer s.rlock()()
	order, ok := s.findOrder(id)
	if !ok {
		return models.OrderSnapshot{}, false
	}
	return order.Snapshot(), true
}

func (s *POSService) GetActiveOrders() []models.OrderSnapshot {
	defer s.rlock()()
	return snapshots(s.orders.GetActiveOrders())
}

func (s *POSService) GetCompletedOrders() []models.OrderSnapshot {
	defer s.rlock()()
	return snapshots(s.orders.CompletedOrders())
}

func (s *POSService) GetOrdersByTable(tableIdentifier string) []models.OrderSnapshot {
	defer s.rlock()()
	return snapshots(s.orders.GetOrdersByTableIdentifier(tableIdentifier))
}

func (s *POSService) GetOrdersByStatus(status models.OrderStatus) []models.OrderSnapshot {
	defer s.rlock()()
	return snapshots(s.orders.GetOrdersByStatus(status))
}

func (s *POSService) GetOrdersByType(orderType models.OrderType) []models.OrderSnapshot {
	defer s.rlock()()
	return snapshots(s.orders.GetOrdersByType(orderType))
}

func (s *POSService) findOrder(id int) (*models.Order, bool) {
	if order, ok := s.orders.GetOrder(id); ok {
		return order, true
	}
	return s.orders.GetCompletedOrder(id)
}

func snapshots(orders []*models.Order) []models.OrderSnapshot {
	out := make([]models.OrderSnapshot, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Snapshot())
	}
	return out
}

// ---- payments ----

// payable returns an order that can still take money: active or served.
func (s *POSService) payable(id int) (*models.Order, error) {
	order, ok := s.findOrder(id)
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	if order.Status() == models.OrderStatusCancelled {
		return nil, fmt.Errorf("order %d: %w", id, ErrOrderCancelled)
	}
	return order, nil
}

// ProcessPayment charges an order. A declined or invalid payment is not an
// error; it comes back as an unsuccessful result.
func (s *POSService) ProcessPayment(orderID int, method models.PaymentMethod, amount, tip float64) (models.PaymentResult, error) {
	defer s.lock()()
	order, err := s.payable(orderID)
	if err != nil {
		return models.PaymentResult{}, err
	}
	return s.payments.ProcessPayment(order, method, amount, tip), nil
}

func (s *POSService) ProcessSplitPayment(orderID int, entries []SplitEntry) ([]models.PaymentResult, error) {
	defer s.lock()()
	if len(entries) == 0 {
		return nil, ErrEmptySplit
	}
	order, err := s.payable(orderID)
	if err != nil {
		return nil, err
	}
	return s.payments.ProcessSplitPayment(order, entries), nil
}

func (s *POSService) ProcessRefund(transactionID string, amount float64) models.PaymentResult {
	defer s.lock()()
	return s.payments.ProcessRefund(transactionID, amount)
}

func (s *POSService) GetOrderBalance(orderID int) (Balance, error) {
	defer s.rlock()()
	order, ok := s.findOrder(orderID)
	if !ok {
		return Balance{}, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}
	paid := utils.RoundMoney(s.payments.AmountPaid(orderID))
	total := utils.RoundMoney(order.Total())
	return Balance{
		OrderID:   orderID,
		Total:     total,
		Paid:      paid,
		Remaining: max(utils.RoundMoney(total-paid), 0),
	}, nil
}

// GetReceipt prints the order with every successful payment made so far.
func (s *POSService) GetReceipt(orderID int) (models.Receipt, error) {
	defer s.rlock()()
	order, ok := s.findOrder(orderID)
	if !ok {
		return models.Receipt{}, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}
	return models.NewReceipt(order.Snapshot(), s.payments.TransactionsForOrder(orderID), s.now()), nil
}

func (s *POSService) GetTransactionHistory() []models.PaymentResult {
	defer s.rlock()()
	return s.payments.TransactionHistory()
}

func (s *POSService) GetTransactionsForOrder(orderID int) []models.PaymentResult {
	defer s.rlock()()
	return s.payments.TransactionsForOrder(orderID)
}

// ---- projections ----

func (s *POSService) GetKitchenQueueStatus() KitchenQueueStatus {
	defer s.rlock()()
	return s.kitchen.QueueStatus()
}

func (s *POSService) GetKitchenQueueJSON() ([]byte, error) {
	return json.MarshalIndent(s.GetKitchenQueueStatus(), "", "  ")
}

func (s *POSService) GetEstimatedWaitTime() int {
	defer s.rlock()()
	return s.kitchen.GetEstimatedWaitTime()
}

func (s *POSService) IsKitchenBusy() bool {
	defer s.rlock()()
	return s.kitchen.IsKitchenBusy()
}

func (s *POSService) GetKitchenTicket(orderID int) (models.KitchenTicket, bool) {
	defer s.rlock()()
	return s.kitchen.GetTicketByOrderID(orderID)
}
