package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
	"buensabor_backend/pkg/utils"
)

// Stock movement types recorded in the audit trail.
const (
	MovementTypeSale       = "sale"
	MovementTypePurchase   = "purchase"
	MovementTypeAdjustment = "adjustment"
)

// ReplenishStockRequest is the DTO for recording incoming stock.
type ReplenishStockRequest struct {
	IngredientID int64   `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	MovementType string  `json:"movement_type"`
	Reason       string  `json:"reason"`
	UserID       *int64  `json:"-"`
}

// StockMovementFilters narrows the movement listing.
type StockMovementFilters struct {
	ArticleID    *int64
	OrderID      *int64
	MovementType *string
	Page         int
	PageSize     int
}

// StockService guards the ingredient stock ledger. Every change to
// current_stock goes through it so a movement row is written alongside.
type StockService interface {
	GetAvailable(ingredientID int64) (float64, string, error)
	CheckSufficient(executor repositories.SQLExecutor, ingredientID int64, required float64) (bool, float64, string, error)
	Deduct(executor repositories.SQLExecutor, ingredientID int64, quantity float64, userID, orderID *int64, reason string) (float64, error)
	Replenish(req ReplenishStockRequest) (*models.StockMovement, error)
	GetMovements(filters StockMovementFilters) ([]models.StockMovement, int, error)
}

type stockService struct {
	articleRepo  repositories.ArticleRepository
	movementRepo repositories.StockMovementRepository
	db           *sql.DB
	tx           repositories.Transactor
}

// NewStockService creates a new instance of StockService.
func NewStockService(articleRepo repositories.ArticleRepository, movementRepo repositories.StockMovementRepository, db *sql.DB, tx repositories.Transactor) StockService {
	return &stockService{articleRepo: articleRepo, movementRepo: movementRepo, db: db, tx: tx}
}

func (s *stockService) GetAvailable(ingredientID int64) (float64, string, error) {
	stock, _, name, err := s.articleRepo.GetIngredientStock(s.db, ingredientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, "", fmt.Errorf("%w: ID %d", ErrIngredientNotFound, ingredientID)
		}
		return 0, "", fmt.Errorf("failed to read stock for ingredient %d: %w", ingredientID, err)
	}
	return stock, name, nil
}

// CheckSufficient reads the stock through the caller's executor, so checks made
// inside a transaction see that transaction's view. An inactive ingredient is
// reported as insufficient, not as an error.
func (s *stockService) CheckSufficient(executor repositories.SQLExecutor, ingredientID int64, required float64) (bool, float64, string, error) {
	stock, active, name, err := s.articleRepo.GetIngredientStock(executor, ingredientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, 0, "", fmt.Errorf("%w: ID %d", ErrIngredientNotFound, ingredientID)
		}
		return false, 0, "", fmt.Errorf("failed to read stock for ingredient %d: %w", ingredientID, err)
	}
	if !active {
		return false, stock, name, nil
	}
	return stock >= required, stock, name, nil
}

// Deduct decrements the ingredient stock inside the caller's transaction and
// records a sale movement. The UPDATE itself re-checks availability, so a
// concurrent order that drained the stock first surfaces as
// *InsufficientStockError rather than a negative balance.
func (s *stockService) Deduct(executor repositories.SQLExecutor, ingredientID int64, quantity float64, userID, orderID *int64, reason string) (float64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: deduction quantity must be positive, got %.2f", ErrValidation, quantity)
	}

	newStock, err := s.articleRepo.DeductStock(executor, ingredientID, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrStockConflict) {
			available, _, name, stockErr := s.articleRepo.GetIngredientStock(executor, ingredientID)
			if stockErr != nil {
				available, name = 0, fmt.Sprintf("ingredient %d", ingredientID)
			}
			return 0, &InsufficientStockError{
				IngredientID:   ingredientID,
				IngredientName: name,
				Required:       quantity,
				Available:      available,
			}
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("%w: ID %d", ErrIngredientNotFound, ingredientID)
		}
		return 0, fmt.Errorf("failed to deduct stock for ingredient %d: %w", ingredientID, err)
	}

	movement := &models.StockMovement{
		ArticleID:      ingredientID,
		UserID:         userID,
		OrderID:        orderID,
		MovementType:   MovementTypeSale,
		QuantityChange: -quantity,
		StockBefore:    newStock + quantity,
		StockAfter:     newStock,
		Reason:         utils.NewNullString(reason),
		MovementDate:   time.Now(),
	}
	if _, err := s.movementRepo.CreateMovement(executor, movement); err != nil {
		return 0, fmt.Errorf("failed to record stock movement for ingredient %d: %w", ingredientID, err)
	}
	return newStock, nil
}

// Replenish adds incoming stock (a purchase or manual adjustment) in its own
// transaction and returns the recorded movement.
func (s *stockService) Replenish(req ReplenishStockRequest) (*models.StockMovement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: replenishment quantity must be positive, got %.2f", ErrValidation, req.Quantity)
	}
	movementType := req.MovementType
	if movementType == "" {
		movementType = MovementTypePurchase
	}
	if movementType != MovementTypePurchase && movementType != MovementTypeAdjustment {
		return nil, fmt.Errorf("%w: unknown movement type %q", ErrValidation, movementType)
	}

	var movement *models.StockMovement
	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		newStock, err := s.articleRepo.AddStock(tx, req.IngredientID, req.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: ID %d", ErrIngredientNotFound, req.IngredientID)
			}
			return fmt.Errorf("failed to add stock for ingredient %d: %w", req.IngredientID, err)
		}

		movement = &models.StockMovement{
			ArticleID:      req.IngredientID,
			UserID:         req.UserID,
			MovementType:   movementType,
			QuantityChange: req.Quantity,
			StockBefore:    newStock - req.Quantity,
			StockAfter:     newStock,
			Reason:         utils.NewNullString(req.Reason),
			MovementDate:   time.Now(),
		}
		if _, err := s.movementRepo.CreateMovement(tx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement for ingredient %d: %w", req.IngredientID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *stockService) GetMovements(filters StockMovementFilters) ([]models.StockMovement, int, error) {
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	movements, total, err := s.movementRepo.GetMovements(filters.ArticleID, filters.OrderID, filters.MovementType, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, total, nil
}
