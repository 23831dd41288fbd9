package models

import "time"

// Shipment types for an order.
const (
	ShipmentDelivery = "DELIVERY"
	ShipmentPickup   = "PICKUP"
)

// Order is a committed purchase created from a customer's cart. Total is the
// customer-facing sum of line subtotals; TotalCost is the cost-of-goods figure
// derived from ingredient purchase prices, kept for margin reporting.
type Order struct {
	ID            int64     `json:"id" db:"id"`
	CustomerID    int64     `json:"customer_id" db:"customer_id"`
	BranchID      *int64    `json:"branch_id,omitempty" db:"branch_id"`
	AddressID     *int64    `json:"address_id,omitempty" db:"address_id"`
	ShipmentType  string    `json:"shipment_type" db:"shipment_type"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	Status        string    `json:"status" db:"status"`
	Total         float64   `json:"total" db:"total"`
	TotalCost     float64   `json:"total_cost" db:"total_cost"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	OrderTime     time.Time `json:"order_time" db:"order_time"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	OrderLines []OrderLine `json:"order_lines,omitempty"`
	Customer   *Customer   `json:"customer,omitempty"`
	Address    *Address    `json:"address,omitempty"`
}

// OrderLine is a committed order item. Quantity, UnitPrice and Subtotal are
// immutable after creation; UnitPrice comes from the cart line, not from the
// catalog at order time.
type OrderLine struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"order_id" db:"order_id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Subtotal  float64   `json:"subtotal" db:"subtotal"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Article *Article `json:"article,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	CustomerID *int64  `form:"customer_id"`
	BranchID   *int64  `form:"branch_id"`
	Status     *string `form:"status"`
	Date       *string `form:"date"` // Expected format YYYY-MM-DD
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
