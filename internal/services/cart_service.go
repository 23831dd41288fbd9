package services

import (
	"database/sql"
	"errors"
	"fmt"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
)

// AddCartLineRequest is the DTO for adding an article to the cart.
type AddCartLineRequest struct {
	ArticleID int64 `json:"article_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CartService defines the interface for cart business logic.
type CartService interface {
	GetOrCreateCart(customerID int64) (*models.Cart, error)
	AddArticle(customerID int64, req AddCartLineRequest) (*models.Cart, error)
	SetLineQuantity(customerID, lineID int64, quantity int) (*models.Cart, error)
	RemoveLine(customerID, lineID int64) (*models.Cart, error)
	ClearCart(customerID int64) error
}

type cartService struct {
	cartRepo     repositories.CartRepository
	articleRepo  repositories.ArticleRepository
	customerRepo repositories.CustomerRepository
	db           *sql.DB
}

// NewCartService creates a new instance of CartService.
func NewCartService(cartRepo repositories.CartRepository, articleRepo repositories.ArticleRepository, customerRepo repositories.CustomerRepository, db *sql.DB) CartService {
	return &cartService{cartRepo: cartRepo, articleRepo: articleRepo, customerRepo: customerRepo, db: db}
}

func (s *cartService) GetOrCreateCart(customerID int64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByCustomerID(s.db, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to get cart for customer %d: %w", customerID, err)
	}

	if _, err := s.customerRepo.GetCustomerByID(customerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	if _, err := s.cartRepo.CreateCart(s.db, customerID); err != nil {
		return nil, fmt.Errorf("failed to create cart for customer %d: %w", customerID, err)
	}
	return s.cartRepo.GetCartByCustomerID(s.db, customerID)
}

// AddArticle puts an article in the cart, snapshotting its current sale price
// on the line. Adding an article already in the cart bumps the existing line's
// quantity and keeps the original price snapshot.
func (s *cartService) AddArticle(customerID int64, req AddCartLineRequest) (*models.Cart, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrValidation, req.Quantity)
	}

	article, err := s.articleRepo.GetArticleByID(s.db, req.ArticleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
		}
		return nil, fmt.Errorf("failed to get article %d: %w", req.ArticleID, err)
	}
	if !article.IsActive {
		return nil, fmt.Errorf("%w: %s (ID: %d)", ErrArticleUnavailable, article.Name, article.ID)
	}
	if article.Type == models.ArticleTypeIngredient && article.Ingredient != nil && article.Ingredient.ForElaborationOnly {
		return nil, fmt.Errorf("%w: %s (ID: %d) is for elaboration only", ErrArticleUnavailable, article.Name, article.ID)
	}

	cart, err := s.GetOrCreateCart(customerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetCartLineByArticle(cart.ID, req.ArticleID)
	switch {
	case err == nil:
		if err := s.cartRepo.UpdateCartLineQuantity(s.db, existing.ID, existing.Quantity+req.Quantity); err != nil {
			return nil, fmt.Errorf("failed to update cart line %d: %w", existing.ID, err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		line := &models.CartLine{
			CartID:    cart.ID,
			ArticleID: req.ArticleID,
			Quantity:  req.Quantity,
			UnitPrice: article.SalePrice,
		}
		if _, err := s.cartRepo.CreateCartLine(s.db, line); err != nil {
			return nil, fmt.Errorf("failed to create cart line: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}

	return s.cartRepo.GetCartByCustomerID(s.db, customerID)
}

// SetLineQuantity changes a line's quantity. A quantity of zero or less
// removes the line.
func (s *cartService) SetLineQuantity(customerID, lineID int64, quantity int) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByCustomerID(s.db, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, fmt.Errorf("failed to get cart for customer %d: %w", customerID, err)
	}
	if !cartOwnsLine(cart, lineID) {
		return nil, ErrCartLineNotFound
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteCartLine(s.db, lineID); err != nil {
			return nil, fmt.Errorf("failed to delete cart line %d: %w", lineID, err)
		}
	} else {
		if err := s.cartRepo.UpdateCartLineQuantity(s.db, lineID, quantity); err != nil {
			return nil, fmt.Errorf("failed to update cart line %d: %w", lineID, err)
		}
	}
	return s.cartRepo.GetCartByCustomerID(s.db, customerID)
}

func (s *cartService) RemoveLine(customerID, lineID int64) (*models.Cart, error) {
	return s.SetLineQuantity(customerID, lineID, 0)
}

func (s *cartService) ClearCart(customerID int64) error {
	cart, err := s.cartRepo.GetCartByCustomerID(s.db, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get cart for customer %d: %w", customerID, err)
	}
	if _, err := s.cartRepo.ClearCart(s.db, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart %d: %w", cart.ID, err)
	}
	return nil
}

func cartOwnsLine(cart *models.Cart, lineID int64) bool {
	for _, line := range cart.Lines {
		if line.ID == lineID {
			return true
		}
	}
	return false
}
