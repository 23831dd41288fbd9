package services

import (
	"errors"
	"fmt"
)

// Shared service-level errors. Handlers map these to HTTP statuses.
var (
	ErrValidation = errors.New("validation error")

	ErrArticleNotFound    = errors.New("article not found")
	ErrArticleUnavailable = errors.New("article is not available for ordering")
	ErrRecipeMissing      = errors.New("manufactured article has no recipe")
	ErrUnknownArticleType = errors.New("article is neither an ingredient nor a manufactured product")
	ErrIngredientNotFound = errors.New("ingredient not found")

	ErrEmptyCart        = errors.New("cart has no lines")
	ErrCartLineNotFound = errors.New("cart line not found")

	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status transition not allowed")

	ErrLocalityNotFound = errors.New("locality not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// InsufficientStockError reports the first ingredient whose accumulated demand
// exceeds the available stock. It carries the numbers so callers can show them.
type InsufficientStockError struct {
	IngredientID   int64
	IngredientName string
	Required       float64
	Available      float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (ID: %d): required %.2f, available %.2f",
		e.IngredientName, e.IngredientID, e.Required, e.Available)
}
