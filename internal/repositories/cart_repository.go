package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"buensabor_backend/internal/models"

	"github.com/lib/pq"
)

// CartRepository defines the interface for cart-related database operations.
type CartRepository interface {
	GetCartByCustomerID(executor SQLExecutor, customerID int64) (*models.Cart, error) // Includes lines with a joined article summary
	CreateCart(executor SQLExecutor, customerID int64) (int64, error)
	GetCartLineByArticle(cartID, articleID int64) (*models.CartLine, error)
	CreateCartLine(executor SQLExecutor, line *models.CartLine) (int64, error)
	UpdateCartLineQuantity(executor SQLExecutor, lineID int64, quantity int) error
	DeleteCartLine(executor SQLExecutor, lineID int64) error
	ClearCart(executor SQLExecutor, cartID int64) (int64, error) // Returns removed line count
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartByCustomerID(executor SQLExecutor, customerID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	query := `SELECT id, customer_id, created_at, updated_at FROM carts WHERE customer_id = $1`
	err := executor.QueryRow(query, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting cart for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}

	lines, err := r.getCartLines(executor, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return cart, nil
}

func (r *cartRepository) getCartLines(executor SQLExecutor, cartID int64) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	query := `SELECT cl.id, cl.cart_id, cl.article_id, cl.quantity, cl.unit_price, cl.created_at, cl.updated_at,
	                 a.name, a.type, a.sale_price, a.is_active
	          FROM cart_lines cl
	          JOIN articles a ON cl.article_id = a.id
	          WHERE cl.cart_id = $1
	          ORDER BY cl.id`

	rows, err := executor.Query(query, cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying cart lines for cart ID %d: %v", ErrDatabaseError, cartID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CartLine
		article := &models.Article{}
		if err := rows.Scan(
			&line.ID, &line.CartID, &line.ArticleID, &line.Quantity, &line.UnitPrice, &line.CreatedAt, &line.UpdatedAt,
			&article.Name, &article.Type, &article.SalePrice, &article.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning cart line: %v", ErrDatabaseError, err)
		}
		article.ID = line.ArticleID
		line.Article = article
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cart lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

func (r *cartRepository) CreateCart(executor SQLExecutor, customerID int64) (int64, error) {
	var cartID int64
	query := `INSERT INTO carts (customer_id, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, customerID, currentTime, currentTime).Scan(&cartID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: customer ID %d already has a cart (constraint: %s)", ErrDuplicateKey, customerID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating cart for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}
	return cartID, nil
}

func (r *cartRepository) GetCartLineByArticle(cartID, articleID int64) (*models.CartLine, error) {
	line := &models.CartLine{}
	query := `SELECT id, cart_id, article_id, quantity, unit_price, created_at, updated_at
	          FROM cart_lines WHERE cart_id = $1 AND article_id = $2`
	err := r.db.QueryRow(query, cartID, articleID).Scan(
		&line.ID, &line.CartID, &line.ArticleID, &line.Quantity, &line.UnitPrice, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting cart line (cart %d, article %d): %v", ErrDatabaseError, cartID, articleID, err)
	}
	return line, nil
}

func (r *cartRepository) CreateCartLine(executor SQLExecutor, line *models.CartLine) (int64, error) {
	query := `INSERT INTO cart_lines (cart_id, article_id, quantity, unit_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, line.CartID, line.ArticleID, line.Quantity, line.UnitPrice, currentTime, currentTime).Scan(&line.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating cart line (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating cart line: %v", ErrDatabaseError, err)
	}
	return line.ID, nil
}

func (r *cartRepository) UpdateCartLineQuantity(executor SQLExecutor, lineID int64, quantity int) error {
	result, err := executor.Exec(`UPDATE cart_lines SET quantity = $1, updated_at = $2 WHERE id = $3`, quantity, time.Now(), lineID)
	if err != nil {
		return fmt.Errorf("%w: updating cart line ID %d: %v", ErrDatabaseError, lineID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepository) DeleteCartLine(executor SQLExecutor, lineID int64) error {
	result, err := executor.Exec(`DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("%w: deleting cart line ID %d: %v", ErrDatabaseError, lineID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepository) ClearCart(executor SQLExecutor, cartID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, fmt.Errorf("%w: clearing cart ID %d: %v", ErrDatabaseError, cartID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for clearing cart ID %d: %v", ErrDatabaseError, cartID, err)
	}
	return rowsAffected, nil
}
