package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"buensabor_backend/internal/models"

	"github.com/lib/pq"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error) // Basic order details
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error
	SetOrderInactive(executor SQLExecutor, orderID int64) error

	// OrderLine methods
	CreateOrderLine(executor SQLExecutor, line *models.OrderLine) (int64, error)
	GetOrderLinesByOrderID(orderID int64) ([]models.OrderLine, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (customer_id, branch_id, address_id, shipment_type, payment_method, status,
	             total, total_cost, is_active, order_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	if order.OrderTime.IsZero() {
		order.OrderTime = time.Now()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.CustomerID, order.BranchID, order.AddressID, order.ShipmentType, order.PaymentMethod, order.Status,
		order.Total, order.TotalCost, order.IsActive, order.OrderTime, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, customer_id, branch_id, address_id, shipment_type, payment_method, status,
	                 total, total_cost, is_active, order_time, created_at, updated_at
	          FROM orders
	          WHERE id = $1`
	err := r.db.QueryRow(query, orderID).Scan(
		&order.ID, &order.CustomerID, &order.BranchID, &order.AddressID, &order.ShipmentType, &order.PaymentMethod, &order.Status,
		&order.Total, &order.TotalCost, &order.IsActive, &order.OrderTime, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.customer_id, o.branch_id, o.address_id, o.shipment_type, o.payment_method, o.status,
            o.total, o.total_cost, o.is_active, o.order_time, o.created_at, o.updated_at,
            c.full_name AS customer_name, c.phone_number AS customer_phone,
            COUNT(*) OVER() AS total_count
        FROM orders o
        LEFT JOIN customers c ON o.customer_id = c.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argCounter))
		args = append(args, *filters.CustomerID)
		argCounter++
	}
	if filters.BranchID != nil {
		conditions = append(conditions, fmt.Sprintf("o.branch_id = $%d", argCounter))
		args = append(args, *filters.BranchID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.order_time BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.order_time DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var customerName, customerPhone sql.NullString

		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.BranchID, &o.AddressID, &o.ShipmentType, &o.PaymentMethod, &o.Status,
			&o.Total, &o.TotalCost, &o.IsActive, &o.OrderTime, &o.CreatedAt, &o.UpdatedAt,
			&customerName, &customerPhone,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		if customerName.Valid {
			customer := models.Customer{ID: o.CustomerID, FullName: customerName.String}
			if customerPhone.Valid {
				phone := customerPhone.String
				customer.PhoneNumber = &phone
			}
			o.Customer = &customer
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	result, err := executor.Exec(`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) SetOrderInactive(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(`UPDATE orders SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: deactivating order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- OrderLine Methods ---

func (r *orderRepository) CreateOrderLine(executor SQLExecutor, line *models.OrderLine) (int64, error) {
	query := `INSERT INTO order_lines
	            (order_id, article_id, quantity, unit_price, subtotal, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now()
	}
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		line.OrderID, line.ArticleID, line.Quantity, line.UnitPrice, line.Subtotal,
		line.CreatedAt, line.UpdatedAt,
	).Scan(&line.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order line (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order line: %v", ErrDatabaseError, err)
	}
	return line.ID, nil
}

func (r *orderRepository) GetOrderLinesByOrderID(orderID int64) ([]models.OrderLine, error) {
	lines := []models.OrderLine{}
	query := `
		SELECT
		    ol.id, ol.order_id, ol.article_id, ol.quantity, ol.unit_price,
		    ol.subtotal, ol.created_at, ol.updated_at,
		    a.name AS article_name, a.type AS article_type
		FROM order_lines ol
		JOIN articles a ON ol.article_id = a.id
		WHERE ol.order_id = $1
		ORDER BY ol.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order lines for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		article := &models.Article{}

		err := rows.Scan(
			&line.ID, &line.OrderID, &line.ArticleID, &line.Quantity, &line.UnitPrice,
			&line.Subtotal, &line.CreatedAt, &line.UpdatedAt,
			&article.Name, &article.Type,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order line for order ID %d: %v", ErrDatabaseError, orderID, err)
		}

		article.ID = line.ArticleID
		line.Article = article
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order line rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return lines, nil
}
