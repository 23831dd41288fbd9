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

// ArticleRepository defines the interface for catalog and stock database operations.
type ArticleRepository interface {
	CreateArticle(executor SQLExecutor, article *models.Article) (int64, error)
	GetArticleByID(executor SQLExecutor, id int64) (*models.Article, error) // Fully loaded, incl. recipe lines with their ingredient rows
	GetArticles(filters models.ArticleFilters) ([]models.Article, int, error)
	UpdateArticle(executor SQLExecutor, article *models.Article) error
	SetArticleActive(executor SQLExecutor, id int64, active bool) error
	DeleteArticle(executor SQLExecutor, id int64) error

	// Recipe methods
	ReplaceRecipe(executor SQLExecutor, articleID int64, lines []models.RecipeLine) error
	GetRecipeLines(executor SQLExecutor, articleID int64) ([]models.RecipeLine, error)

	// Stock ledger methods, ingredients only
	GetIngredientStock(executor SQLExecutor, id int64) (stock float64, isActive bool, name string, err error)
	DeductStock(executor SQLExecutor, id int64, quantity float64) (newStock float64, err error)
	AddStock(executor SQLExecutor, id int64, quantity float64) (newStock float64, err error)
}

type articleRepository struct {
	db *sql.DB
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *sql.DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleColumns = `a.id, a.name, a.sale_price, a.is_active, a.type,
	a.purchase_price, a.current_stock, a.min_stock, a.measurement_unit, a.for_elaboration_only,
	a.description, a.prep_time_minutes, a.preparation,
	a.created_at, a.updated_at`

// scanArticle reads one article row (in articleColumns order) and assembles the
// tagged union from the nullable variant columns.
func scanArticle(s scanner, extraDest ...interface{}) (*models.Article, error) {
	article := &models.Article{}
	var purchasePrice, currentStock, minStock sql.NullFloat64
	var measurementUnit, description, preparation sql.NullString
	var forElaborationOnly sql.NullBool
	var prepTimeMinutes sql.NullInt64

	dest := []interface{}{
		&article.ID, &article.Name, &article.SalePrice, &article.IsActive, &article.Type,
		&purchasePrice, &currentStock, &minStock, &measurementUnit, &forElaborationOnly,
		&description, &prepTimeMinutes, &preparation,
		&article.CreatedAt, &article.UpdatedAt,
	}
	dest = append(dest, extraDest...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	switch article.Type {
	case models.ArticleTypeIngredient:
		detail := &models.IngredientDetail{}
		if purchasePrice.Valid {
			detail.PurchasePrice = purchasePrice.Float64
		}
		if currentStock.Valid {
			detail.CurrentStock = currentStock.Float64
		}
		if minStock.Valid {
			detail.MinStock = minStock.Float64
		}
		if measurementUnit.Valid {
			detail.MeasurementUnit = measurementUnit.String
		}
		if forElaborationOnly.Valid {
			detail.ForElaborationOnly = forElaborationOnly.Bool
		}
		article.Ingredient = detail
	case models.ArticleTypeManufactured:
		detail := &models.ManufacturedDetail{}
		if description.Valid {
			desc := description.String
			detail.Description = &desc
		}
		if prepTimeMinutes.Valid {
			detail.PrepTimeMinutes = int(prepTimeMinutes.Int64)
		}
		if preparation.Valid {
			prep := preparation.String
			detail.Preparation = &prep
		}
		article.Manufactured = detail
	}
	return article, nil
}

func (r *articleRepository) CreateArticle(executor SQLExecutor, article *models.Article) (int64, error) {
	query := `INSERT INTO articles
	            (name, sale_price, is_active, type,
	             purchase_price, current_stock, min_stock, measurement_unit, for_elaboration_only,
	             description, prep_time_minutes, preparation,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`
	currentTime := time.Now()

	var purchasePrice, currentStock, minStock sql.NullFloat64
	var measurementUnit, description, preparation sql.NullString
	var forElaborationOnly sql.NullBool
	var prepTimeMinutes sql.NullInt64

	switch article.Type {
	case models.ArticleTypeIngredient:
		if article.Ingredient != nil {
			purchasePrice = sql.NullFloat64{Float64: article.Ingredient.PurchasePrice, Valid: true}
			currentStock = sql.NullFloat64{Float64: article.Ingredient.CurrentStock, Valid: true}
			minStock = sql.NullFloat64{Float64: article.Ingredient.MinStock, Valid: true}
			measurementUnit = sql.NullString{String: article.Ingredient.MeasurementUnit, Valid: true}
			forElaborationOnly = sql.NullBool{Bool: article.Ingredient.ForElaborationOnly, Valid: true}
		}
	case models.ArticleTypeManufactured:
		if article.Manufactured != nil {
			if article.Manufactured.Description != nil {
				description = sql.NullString{String: *article.Manufactured.Description, Valid: true}
			}
			prepTimeMinutes = sql.NullInt64{Int64: int64(article.Manufactured.PrepTimeMinutes), Valid: true}
			if article.Manufactured.Preparation != nil {
				preparation = sql.NullString{String: *article.Manufactured.Preparation, Valid: true}
			}
		}
	}

	err := executor.QueryRow(query,
		article.Name, article.SalePrice, article.IsActive, article.Type,
		purchasePrice, currentStock, minStock, measurementUnit, forElaborationOnly,
		description, prepTimeMinutes, preparation,
		currentTime, currentTime,
	).Scan(&article.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: article name '%s' already exists (constraint: %s)", ErrDuplicateKey, article.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating article: %v", ErrDatabaseError, err)
	}
	return article.ID, nil
}

func (r *articleRepository) GetArticleByID(executor SQLExecutor, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = $1`
	article, err := scanArticle(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting article by ID %d: %v", ErrDatabaseError, id, err)
	}

	if article.Type == models.ArticleTypeManufactured && article.Manufactured != nil {
		lines, err := r.GetRecipeLines(executor, id)
		if err != nil {
			return nil, err
		}
		article.Manufactured.Recipe = lines
	}
	return article, nil
}

func (r *articleRepository) GetArticles(filters models.ArticleFilters) ([]models.Article, int, error) {
	articles := []models.Article{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + articleColumns + `, COUNT(*) OVER() AS total_count FROM articles a`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("a.name ILIKE $%d", argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if filters.OnlyActive {
		conditions = append(conditions, "a.is_active = TRUE")
	}
	if filters.LowStock {
		conditions = append(conditions, fmt.Sprintf("a.type = '%s' AND a.current_stock <= a.min_stock", models.ArticleTypeIngredient))
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY a.name")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting articles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning article: %v", ErrDatabaseError, err)
		}
		articles = append(articles, *article)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating articles: %v", ErrDatabaseError, err)
	}
	return articles, totalCount, nil
}

func (r *articleRepository) UpdateArticle(executor SQLExecutor, article *models.Article) error {
	query := `UPDATE articles SET
	            name = $1, sale_price = $2, is_active = $3,
	            purchase_price = $4, current_stock = $5, min_stock = $6, measurement_unit = $7, for_elaboration_only = $8,
	            description = $9, prep_time_minutes = $10, preparation = $11,
	            updated_at = $12
	          WHERE id = $13 AND type = $14`

	var purchasePrice, currentStock, minStock sql.NullFloat64
	var measurementUnit, description, preparation sql.NullString
	var forElaborationOnly sql.NullBool
	var prepTimeMinutes sql.NullInt64

	switch article.Type {
	case models.ArticleTypeIngredient:
		if article.Ingredient != nil {
			purchasePrice = sql.NullFloat64{Float64: article.Ingredient.PurchasePrice, Valid: true}
			currentStock = sql.NullFloat64{Float64: article.Ingredient.CurrentStock, Valid: true}
			minStock = sql.NullFloat64{Float64: article.Ingredient.MinStock, Valid: true}
			measurementUnit = sql.NullString{String: article.Ingredient.MeasurementUnit, Valid: true}
			forElaborationOnly = sql.NullBool{Bool: article.Ingredient.ForElaborationOnly, Valid: true}
		}
	case models.ArticleTypeManufactured:
		if article.Manufactured != nil {
			if article.Manufactured.Description != nil {
				description = sql.NullString{String: *article.Manufactured.Description, Valid: true}
			}
			prepTimeMinutes = sql.NullInt64{Int64: int64(article.Manufactured.PrepTimeMinutes), Valid: true}
			if article.Manufactured.Preparation != nil {
				preparation = sql.NullString{String: *article.Manufactured.Preparation, Valid: true}
			}
		}
	}

	result, err := executor.Exec(query,
		article.Name, article.SalePrice, article.IsActive,
		purchasePrice, currentStock, minStock, measurementUnit, forElaborationOnly,
		description, prepTimeMinutes, preparation,
		time.Now(), article.ID, article.Type,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: article name '%s' already exists (constraint: %s)", ErrDuplicateKey, article.Name, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating article ID %d: %v", ErrDatabaseError, article.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) SetArticleActive(executor SQLExecutor, id int64, active bool) error {
	result, err := executor.Exec(`UPDATE articles SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: setting active flag for article ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) DeleteArticle(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: article ID %d cannot be deleted as it is referenced by other records (e.g., recipes, orders) (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting article ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Recipe Methods ---

func (r *articleRepository) ReplaceRecipe(executor SQLExecutor, articleID int64, lines []models.RecipeLine) error {
	if _, err := executor.Exec(`DELETE FROM recipe_lines WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("%w: clearing recipe for article ID %d: %v", ErrDatabaseError, articleID, err)
	}

	query := `INSERT INTO recipe_lines (article_id, ingredient_id, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	currentTime := time.Now()
	for _, line := range lines {
		if _, err := executor.Exec(query, articleID, line.IngredientID, line.Quantity, currentTime, currentTime); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return fmt.Errorf("%w: recipe line references unknown ingredient ID %d (constraint: %s)", ErrDatabaseError, line.IngredientID, pqErr.Constraint)
			}
			return fmt.Errorf("%w: inserting recipe line for article ID %d: %v", ErrDatabaseError, articleID, err)
		}
	}
	return nil
}

func (r *articleRepository) GetRecipeLines(executor SQLExecutor, articleID int64) ([]models.RecipeLine, error) {
	lines := []models.RecipeLine{}
	query := `SELECT rl.id, rl.article_id, rl.ingredient_id, rl.quantity, rl.created_at, rl.updated_at,
	                 ` + articleColumns + `
	          FROM recipe_lines rl
	          JOIN articles a ON rl.ingredient_id = a.id
	          WHERE rl.article_id = $1
	          ORDER BY rl.id`

	rows, err := executor.Query(query, articleID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recipe lines for article ID %d: %v", ErrDatabaseError, articleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.RecipeLine
		ingredient := &models.Article{}
		var purchasePrice, currentStock, minStock sql.NullFloat64
		var measurementUnit, description, preparation sql.NullString
		var forElaborationOnly sql.NullBool
		var prepTimeMinutes sql.NullInt64

		if err := rows.Scan(
			&line.ID, &line.ArticleID, &line.IngredientID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
			&ingredient.ID, &ingredient.Name, &ingredient.SalePrice, &ingredient.IsActive, &ingredient.Type,
			&purchasePrice, &currentStock, &minStock, &measurementUnit, &forElaborationOnly,
			&description, &prepTimeMinutes, &preparation,
			&ingredient.CreatedAt, &ingredient.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning recipe line: %v", ErrDatabaseError, err)
		}

		if ingredient.Type == models.ArticleTypeIngredient {
			detail := &models.IngredientDetail{}
			if purchasePrice.Valid {
				detail.PurchasePrice = purchasePrice.Float64
			}
			if currentStock.Valid {
				detail.CurrentStock = currentStock.Float64
			}
			if minStock.Valid {
				detail.MinStock = minStock.Float64
			}
			if measurementUnit.Valid {
				detail.MeasurementUnit = measurementUnit.String
			}
			if forElaborationOnly.Valid {
				detail.ForElaborationOnly = forElaborationOnly.Bool
			}
			ingredient.Ingredient = detail
		}
		line.Ingredient = ingredient
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating recipe lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

// --- Stock Ledger Methods ---

func (r *articleRepository) GetIngredientStock(executor SQLExecutor, id int64) (float64, bool, string, error) {
	var stock sql.NullFloat64
	var isActive bool
	var name string
	query := `SELECT name, is_active, current_stock FROM articles WHERE id = $1 AND type = $2`
	err := executor.QueryRow(query, id, models.ArticleTypeIngredient).Scan(&name, &isActive, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, "", ErrNotFound
		}
		return 0, false, "", fmt.Errorf("%w: getting stock for ingredient ID %d: %v", ErrDatabaseError, id, err)
	}
	return stock.Float64, isActive, name, nil
}

func (r *articleRepository) DeductStock(executor SQLExecutor, id int64, quantity float64) (float64, error) {
	var newStock float64
	query := `UPDATE articles
	          SET current_stock = current_stock - $1, updated_at = $2
	          WHERE id = $3 AND type = $4 AND current_stock >= $1
	          RETURNING current_stock`
	err := executor.QueryRow(query, quantity, time.Now(), id, models.ArticleTypeIngredient).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish missing ingredient from insufficient stock.
			available, _, _, checkErr := r.GetIngredientStock(executor, id)
			if checkErr != nil {
				return 0, checkErr
			}
			return available, fmt.Errorf("%w: ingredient ID %d has %.2f available, requested %.2f", ErrStockConflict, id, available, quantity)
		}
		return 0, fmt.Errorf("%w: deducting stock for ingredient ID %d: %v", ErrDatabaseError, id, err)
	}
	return newStock, nil
}

func (r *articleRepository) AddStock(executor SQLExecutor, id int64, quantity float64) (float64, error) {
	var newStock float64
	query := `UPDATE articles
	          SET current_stock = COALESCE(current_stock, 0) + $1, updated_at = $2
	          WHERE id = $3 AND type = $4
	          RETURNING current_stock`
	err := executor.QueryRow(query, quantity, time.Now(), id, models.ArticleTypeIngredient).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adding stock for ingredient ID %d: %v", ErrDatabaseError, id, err)
	}
	return newStock, nil
}
