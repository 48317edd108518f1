package models

import "time"

// TransactionRecord is the archived form of a PaymentResult.
type TransactionRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TransactionID   string    `gorm:"type:varchar(32);index" json:"transaction_id"`
	OrderID         int       `gorm:"index;not null" json:"order_id"`
	Method          string    `gorm:"type:varchar(20);not null" json:"method"`
	Success         bool      `gorm:"not null" json:"success"`
	ErrorMessage    string    `gorm:"type:varchar(255)" json:"error_message"`
	AmountProcessed float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"amount_processed"`
	Tip             float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"tip"`
	ProcessedAt     time.Time `gorm:"not null" json:"processed_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func NewTransactionRecord(r PaymentResult) TransactionRecord {
	return TransactionRecord{
		TransactionID:   r.TransactionID,
		OrderID:         r.OrderID,
		Method:          string(r.Method),
		Success:         r.Success,
		ErrorMessage:    r.ErrorMessage,
		AmountProcessed: r.AmountProcessed,
		Tip:             r.Tip,
		ProcessedAt:     r.Timestamp,
	}
}

// OrderRecord is the archived form of a finished (served or cancelled) order.
type OrderRecord struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	OrderID         int               `gorm:"uniqueIndex;not null" json:"order_id"`
	TableIdentifier string            `gorm:"type:varchar(50);not null" json:"table_identifier"`
	OrderType       string            `gorm:"type:varchar(20);not null" json:"order_type"`
	Status          string            `gorm:"type:varchar(20);not null" json:"status"`
	Subtotal        float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax             float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Total           float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	Items           []OrderItemRecord `gorm:"foreignKey:OrderRecordID" json:"items"`
	OrderedAt       time.Time         `gorm:"not null" json:"ordered_at"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
}

type OrderItemRecord struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	OrderRecordID uint    `gorm:"not null" json:"order_record_id"`
	MenuItemID    int     `gorm:"not null" json:"menu_item_id"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity      int     `gorm:"not null" json:"quantity"`
	Price         float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Notes         string  `gorm:"type:text" json:"notes"`
}

func NewOrderRecord(o OrderSnapshot) OrderRecord {
	items := make([]OrderItemRecord, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemRecord{
			MenuItemID: item.MenuItem.ID,
			Name:       item.MenuItem.Name,
			Quantity:   item.Quantity,
			Price:      item.MenuItem.Price,
			Notes:      item.SpecialInstructions,
		})
	}
	return OrderRecord{
		OrderID:         o.ID,
		TableIdentifier: o.TableIdentifier,
		OrderType:       string(o.Type),
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Total:           o.Total,
		Items:           items,
		OrderedAt:       o.CreatedAt,
	}
}
