package models

import "time"

// StockMovement records each change of an ingredient's stock, with the
// quantities before and after so the history is auditable on its own.
type StockMovement struct {
	ID             int64     `json:"id" db:"id"`
	ArticleID      int64     `json:"article_id" db:"article_id" binding:"required"`
	UserID         *int64    `json:"user_id,omitempty" db:"user_id"`
	OrderID        *int64    `json:"order_id,omitempty" db:"order_id"`
	MovementType   string    `json:"movement_type" db:"movement_type" binding:"required"` // e.g. sale, purchase, adjustment
	QuantityChange float64   `json:"quantity_change" db:"quantity_change"`                // positive = in, negative = out
	StockBefore    float64   `json:"stock_before" db:"stock_before"`
	StockAfter     float64   `json:"stock_after" db:"stock_after"`
	Reason         *string   `json:"reason,omitempty" db:"reason"`
	MovementDate   time.Time `json:"movement_date" db:"movement_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Article *Article `json:"article,omitempty"`
}
