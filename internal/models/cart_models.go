package models

import "time"

// Cart is the pending-order container of a customer. One cart per customer,
// created lazily on first access.
type Cart struct {
	ID         int64      `json:"id" db:"id"`
	CustomerID int64      `json:"customer_id" db:"customer_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	Lines      []CartLine `json:"lines"`
}

// CartLine is one pending item. UnitPrice is captured from the catalog at the
// moment the article is added and carries into the order unchanged.
type CartLine struct {
	ID        int64     `json:"id" db:"id"`
	CartID    int64     `json:"cart_id" db:"cart_id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Article *Article `json:"article,omitempty"` // joined catalog summary
}
