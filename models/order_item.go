package models

import "fmt"

// OrderItem holds its own copy of the menu item, so later price edits on the
// catalog do not reach orders already open.
type OrderItem struct {
	MenuItem            MenuItem `json:"menu_item"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

func NewOrderItem(menuItem MenuItem, quantity int, instructions string) OrderItem {
	item := OrderItem{MenuItem: menuItem, SpecialInstructions: instructions}
	item.SetQuantity(quantity)
	return item
}

// SetQuantity clamps to a minimum of 1.
func (i *OrderItem) SetQuantity(quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	i.Quantity = quantity
}

func (i OrderItem) TotalPrice() float64 {
	return float64(i.Quantity) * i.MenuItem.Price
}

// KitchenLine formats the item the way it is printed on a ticket, e.g. "2x Burger".
func (i OrderItem) KitchenLine() string {
	return fmt.Sprintf("%dx %s", i.Quantity, i.MenuItem.Name)
}
