package services

import (
	"errors"
	"fmt"
	"time"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
)

// Order statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusPreparing = "preparing"
	StatusEnRoute   = "en_route"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// orderTransitions is the order state machine: every allowed target status per
// current status. Cancelled and rejected are terminal; delivered admits only
// the idempotent self-transition.
var orderTransitions = map[string][]string{
	StatusPending:   {StatusPaid, StatusPreparing, StatusCancelled, StatusRejected},
	StatusPaid:      {StatusPreparing, StatusCancelled, StatusRejected},
	StatusPreparing: {StatusEnRoute, StatusDelivered, StatusCancelled, StatusRejected},
	StatusEnRoute:   {StatusDelivered, StatusRejected},
	StatusDelivered: {StatusDelivered},
	StatusCancelled: {},
	StatusRejected:  {},
}

func isValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

func canTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DeliveryAddressRequest carries the address for a delivery order. The address
// is resolved find-or-create by its full (street, number, postal code,
// locality) tuple and linked to the customer's address book.
type DeliveryAddressRequest struct {
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	LocalityID int64  `json:"locality_id" binding:"required"`
}

// CreateOrderFromCartRequest is the DTO for checking out a customer's cart.
type CreateOrderFromCartRequest struct {
	CustomerID    int64                   `json:"customer_id" binding:"required"`
	BranchID      *int64                  `json:"branch_id"`
	ShipmentType  string                  `json:"shipment_type" binding:"required"`
	PaymentMethod string                  `json:"payment_method" binding:"required"`
	Address       *DeliveryAddressRequest `json:"address"`
	UserID        *int64                  `json:"-"` // set from the auth context, for the stock audit trail
}

// UpdateOrderStatusRequest is the DTO for moving an order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderService defines the interface for order business logic.
type OrderService interface {
	CreateOrderFromCart(req CreateOrderFromCartRequest) (*models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	CancelOrder(orderID int64) (*models.Order, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	articleRepo repositories.ArticleRepository
	cartRepo    repositories.CartRepository
	addressRepo repositories.AddressRepository
	stock       StockService
	tx          repositories.Transactor
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	articleRepo repositories.ArticleRepository,
	cartRepo repositories.CartRepository,
	addressRepo repositories.AddressRepository,
	stock StockService,
	tx repositories.Transactor,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		articleRepo: articleRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		stock:       stock,
		tx:          tx,
	}
}

// CreateOrderFromCart turns the customer's cart into a pending order.
//
// It runs in two passes inside one transaction. The first pass only reads: it
// loads every cart line's article, expands recipes into accumulated ingredient
// demand, and checks that demand against available stock. The second pass
// mutates: it persists the order, deducts every ingredient, writes the order
// lines, and clears the cart. Any failure rolls the whole transaction back, so
// stock is never partially deducted.
func (s *orderService) CreateOrderFromCart(req CreateOrderFromCartRequest) (*models.Order, error) {
	if req.ShipmentType != models.ShipmentDelivery && req.ShipmentType != models.ShipmentPickup {
		return nil, fmt.Errorf("%w: unknown shipment type %q", ErrValidation, req.ShipmentType)
	}
	if req.ShipmentType == models.ShipmentDelivery && req.Address == nil {
		return nil, fmt.Errorf("%w: delivery orders require an address", ErrValidation)
	}
	if req.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	var createdOrderID int64
	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		cart, err := s.cartRepo.GetCartByCustomerID(tx, req.CustomerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrEmptyCart
			}
			return fmt.Errorf("failed to load cart for customer %d: %w", req.CustomerID, err)
		}
		if len(cart.Lines) == 0 {
			return ErrEmptyCart
		}

		// Pass 1: validate every line and accumulate ingredient demand.
		// Nothing is written until the whole cart checks out.
		demand := make(map[int64]float64)
		var total, totalCost float64
		orderLines := make([]models.OrderLine, 0, len(cart.Lines))

		for _, line := range cart.Lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: cart line %d has non-positive quantity %d", ErrValidation, line.ID, line.Quantity)
			}

			// The cart line carries only an article summary; reload the full
			// article so the recipe and stock fields are present.
			article, err := s.articleRepo.GetArticleByID(tx, line.ArticleID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: ID %d", ErrArticleNotFound, line.ArticleID)
				}
				return fmt.Errorf("failed to load article %d: %w", line.ArticleID, err)
			}
			if !article.IsActive {
				return fmt.Errorf("%w: %s (ID: %d)", ErrArticleUnavailable, article.Name, article.ID)
			}
			if article.Type == models.ArticleTypeManufactured && article.Manufactured != nil {
				for _, rl := range article.Manufactured.Recipe {
					if rl.Ingredient != nil && !rl.Ingredient.IsActive {
						return fmt.Errorf("%w: %s uses inactive ingredient %s (ID: %d)",
							ErrArticleUnavailable, article.Name, rl.Ingredient.Name, rl.IngredientID)
					}
				}
			}

			lineDemand, err := ResolveIngredientDemand(article, line.Quantity)
			if err != nil {
				return err
			}
			AccumulateDemand(demand, lineDemand)

			subtotal := float64(line.Quantity) * line.UnitPrice
			total += subtotal
			totalCost += float64(line.Quantity) * articleUnitCost(article)
			orderLines = append(orderLines, models.OrderLine{
				ArticleID: line.ArticleID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		// The accumulated demand is checked per ingredient, so two cart lines
		// sharing an ingredient cannot each pass on the same units of stock.
		ingredientIDs := sortedIngredientIDs(demand)
		for _, id := range ingredientIDs {
			required := demand[id]
			sufficient, available, name, err := s.stock.CheckSufficient(tx, id, required)
			if err != nil {
				return err
			}
			if !sufficient {
				return &InsufficientStockError{
					IngredientID:   id,
					IngredientName: name,
					Required:       required,
					Available:      available,
				}
			}
		}

		var addressID *int64
		if req.ShipmentType == models.ShipmentDelivery {
			id, err := s.resolveDeliveryAddress(tx, req.CustomerID, req.Address)
			if err != nil {
				return err
			}
			addressID = &id
		}

		// Pass 2: commit. The order row goes in first so the sale movements
		// can reference it in the audit trail.
		order := models.Order{
			CustomerID:    req.CustomerID,
			BranchID:      req.BranchID,
			AddressID:     addressID,
			ShipmentType:  req.ShipmentType,
			PaymentMethod: req.PaymentMethod,
			Status:        StatusPending,
			Total:         total,
			TotalCost:     totalCost,
			IsActive:      true,
			OrderTime:     time.Now(),
		}
		orderID, err := s.orderRepo.CreateOrder(tx, &order)
		if err != nil {
			return fmt.Errorf("failed to create order for customer %d: %w", req.CustomerID, err)
		}

		for _, id := range ingredientIDs {
			if _, err := s.stock.Deduct(tx, id, demand[id], req.UserID, &orderID, "order creation"); err != nil {
				return err
			}
		}

		for i := range orderLines {
			orderLines[i].OrderID = orderID
			if _, err := s.orderRepo.CreateOrderLine(tx, &orderLines[i]); err != nil {
				return fmt.Errorf("failed to create order line for order %d: %w", orderID, err)
			}
		}

		if _, err := s.cartRepo.ClearCart(tx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart %d: %w", cart.ID, err)
		}

		createdOrderID = orderID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(createdOrderID)
}

// articleUnitCost is the ingredient cost of one unit of the article at order
// time: the purchase price for an ingredient, the recipe-weighted sum of
// ingredient purchase prices for a manufactured article.
func articleUnitCost(article *models.Article) float64 {
	switch article.Type {
	case models.ArticleTypeIngredient:
		if article.Ingredient != nil {
			return article.Ingredient.PurchasePrice
		}
	case models.ArticleTypeManufactured:
		if article.Manufactured != nil {
			var cost float64
			for _, rl := range article.Manufactured.Recipe {
				if rl.Ingredient != nil && rl.Ingredient.Ingredient != nil {
					cost += rl.Quantity * rl.Ingredient.Ingredient.PurchasePrice
				}
			}
			return cost
		}
	}
	return 0
}

// resolveDeliveryAddress finds or creates the address and links it to the
// customer. Reuses an existing row only on an exact (street, number, postal
// code, locality) match; the link is idempotent.
func (s *orderService) resolveDeliveryAddress(tx repositories.SQLExecutor, customerID int64, req *DeliveryAddressRequest) (int64, error) {
	if _, err := s.addressRepo.GetLocalityByID(req.LocalityID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("%w: ID %d", ErrLocalityNotFound, req.LocalityID)
		}
		return 0, fmt.Errorf("failed to load locality %d: %w", req.LocalityID, err)
	}

	address, err := s.addressRepo.FindByExactMatch(tx, req.Street, req.Number, req.PostalCode, req.LocalityID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("failed to look up address: %w", err)
		}
		address = &models.Address{
			Street:     req.Street,
			Number:     req.Number,
			PostalCode: req.PostalCode,
			LocalityID: req.LocalityID,
		}
		if _, err := s.addressRepo.CreateAddress(tx, address); err != nil {
			return 0, fmt.Errorf("failed to create address: %w", err)
		}
	}

	if err := s.addressRepo.LinkCustomerAddress(tx, customerID, address.ID); err != nil {
		return 0, fmt.Errorf("failed to link address %d to customer %d: %w", address.ID, customerID, err)
	}
	return address.ID, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	lines, err := s.orderRepo.GetOrderLinesByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lines for order %d: %w", orderID, err)
	}
	order.OrderLines = lines
	return order, nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Status != nil && *filters.Status != "" && !isValidOrderStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, *filters.Status)
	}
	orders, total, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrderStatus moves an order to a new status if the state machine allows
// the transition. Repeating the current status of a delivered order is a no-op.
func (s *orderService) UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	if !isValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, req.Status)
	}

	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		order, err := s.orderRepo.GetOrderByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
			}
			return fmt.Errorf("failed to get order %d: %w", orderID, err)
		}

		if order.Status == req.Status && order.Status == StatusDelivered {
			return nil
		}
		if !canTransition(order.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, req.Status)
		}
		if order.Status == req.Status {
			return nil
		}
		return s.orderRepo.UpdateOrderStatus(tx, orderID, req.Status, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}

// CancelOrder cancels the order and marks it inactive. Stock already deducted
// stays deducted; any replenishment is a manual adjustment through the stock
// ledger.
func (s *orderService) CancelOrder(orderID int64) (*models.Order, error) {
	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		order, err := s.orderRepo.GetOrderByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
			}
			return fmt.Errorf("failed to get order %d: %w", orderID, err)
		}
		if !canTransition(order.Status, StatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, StatusCancelled)
		}
		if err := s.orderRepo.UpdateOrderStatus(tx, orderID, StatusCancelled, time.Now()); err != nil {
			return err
		}
		return s.orderRepo.SetOrderInactive(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}
