package models

import "time"

// Customer represents a person placing orders. UserID links the customer to
// their login credentials when they have an account.
type Customer struct {
	ID          int64     `json:"id" db:"id"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	FullName    string    `json:"full_name" db:"full_name" binding:"required"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Email       *string   `json:"email,omitempty" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Address is a delivery address, identified by the exact
// (street, number, postal code, locality) tuple.
type Address struct {
	ID         int64     `json:"id" db:"id"`
	Street     string    `json:"street" db:"street" binding:"required"`
	Number     string    `json:"number" db:"number" binding:"required"`
	PostalCode string    `json:"postal_code" db:"postal_code" binding:"required"`
	LocalityID int64     `json:"locality_id" db:"locality_id" binding:"required"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Locality *Locality `json:"locality,omitempty"`
}

// Locality is a city/town an address belongs to.
type Locality struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
