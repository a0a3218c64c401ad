package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order never leaves checked_out.
const (
	StatusActive     = "active"
	StatusCheckedOut = "checked_out"
)

// Order is one customer's tab at one desk for one continuous session.
// A desk is occupied exactly while an active order references it.
type Order struct {
	BaseModel
	DeskNumber     int         `gorm:"index;uniqueIndex:uidx_orders_active_desk,where:status = 'active'" json:"desk_number"`
	CustomerName   string      `json:"customer_name"`
	CustomerMobile string      `gorm:"index;uniqueIndex:uidx_orders_active_customer,where:status = 'active'" json:"customer_mobile"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"total_amount"`
	Status         string      `gorm:"index" json:"status"`
	OrderTime      time.Time   `json:"order_time"`
	CheckoutTime   *time.Time  `json:"checkout_time"`
}

// OrderItem is one line of an order. Price is a snapshot taken when the
// item was added, not a live menu lookup.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}
