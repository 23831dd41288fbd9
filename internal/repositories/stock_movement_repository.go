package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"buensabor_backend/internal/models"
)

// StockMovementRepository defines the interface for the stock audit trail.
type StockMovementRepository interface {
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(articleID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (article_id, user_id, order_id, movement_type, quantity_change, stock_before, stock_after, reason, movement_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	if movement.MovementDate.IsZero() {
		movement.MovementDate = currentTime
	}

	var userID, orderID sql.NullInt64
	if movement.UserID != nil {
		userID = sql.NullInt64{Int64: *movement.UserID, Valid: true}
	}
	if movement.OrderID != nil {
		orderID = sql.NullInt64{Int64: *movement.OrderID, Valid: true}
	}

	err := executor.QueryRow(query,
		movement.ArticleID, userID, orderID, movement.MovementType, movement.QuantityChange,
		movement.StockBefore, movement.StockAfter, movement.Reason, movement.MovementDate, currentTime,
	).Scan(&movement.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(articleID *int64, orderID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.article_id, sm.user_id, sm.order_id, sm.movement_type, sm.quantity_change,
	    sm.stock_before, sm.stock_after, sm.reason, sm.movement_date, sm.created_at,
	    a.name AS article_name, a.type AS article_type,
	    COUNT(*) OVER() AS total_count
	  FROM stock_movements sm
	  JOIN articles a ON sm.article_id = a.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if articleID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.article_id = $%d", argCount))
		args = append(args, *articleID)
		argCount++
	}
	if orderID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.order_id = $%d", argCount))
		args = append(args, *orderID)
		argCount++
	}
	if movementType != nil && *movementType != "" {
		conditions = append(conditions, fmt.Sprintf("sm.movement_type = $%d", argCount))
		args = append(args, *movementType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY sm.movement_date DESC, sm.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.StockMovement
		article := &models.Article{}
		var scannedUserID, scannedOrderID sql.NullInt64

		if err := rows.Scan(
			&movement.ID, &movement.ArticleID, &scannedUserID, &scannedOrderID, &movement.MovementType, &movement.QuantityChange,
			&movement.StockBefore, &movement.StockAfter, &movement.Reason, &movement.MovementDate, &movement.CreatedAt,
			&article.Name, &article.Type,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}

		if scannedUserID.Valid {
			movement.UserID = &scannedUserID.Int64
		}
		if scannedOrderID.Valid {
			movement.OrderID = &scannedOrderID.Int64
		}
		article.ID = movement.ArticleID
		movement.Article = article
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}
