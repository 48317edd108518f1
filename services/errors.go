package services

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderCancelled    = errors.New("order is cancelled")
	ErrTicketNotFound    = errors.New("kitchen ticket not found")
	ErrTicketExists      = errors.New("order already has a kitchen ticket")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrBroadcastFailed   = errors.New("kitchen broadcast failed")
	ErrInvalidTable      = errors.New("invalid table identifier")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrDuplicateMenuItem = errors.New("menu item id already exists")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrNoCurrentOrder    = errors.New("no order is being built")
	ErrEmptySplit        = errors.New("split payment has no entries")
	ErrKitchenRegression = errors.New("kitchen status cannot move backward")
)
