package services

import (
	"database/sql"
	"errors"
	"fmt"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
)

// CreateIngredientRequest is the DTO for registering an ingredient article.
type CreateIngredientRequest struct {
	Name               string  `json:"name" binding:"required"`
	SalePrice          float64 `json:"sale_price"`
	PurchasePrice      float64 `json:"purchase_price" binding:"required,gt=0"`
	CurrentStock       float64 `json:"current_stock"`
	MinStock           float64 `json:"min_stock"`
	MeasurementUnit    string  `json:"measurement_unit" binding:"required"`
	ForElaborationOnly bool    `json:"for_elaboration_only"`
}

// RecipeLineRequest is one ingredient requirement inside a recipe.
type RecipeLineRequest struct {
	IngredientID int64   `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateManufacturedRequest is the DTO for registering a manufactured article
// together with its recipe.
type CreateManufacturedRequest struct {
	Name            string              `json:"name" binding:"required"`
	SalePrice       float64             `json:"sale_price" binding:"required,gt=0"`
	Description     *string             `json:"description"`
	PrepTimeMinutes int                 `json:"prep_time_minutes"`
	Preparation     *string             `json:"preparation"`
	Recipe          []RecipeLineRequest `json:"recipe" binding:"required,min=1,dive"`
}

// UpdateIngredientRequest mirrors CreateIngredientRequest for updates. Stock is
// deliberately absent: stock changes go through the stock ledger so every
// movement is audited.
type UpdateIngredientRequest struct {
	Name               string  `json:"name" binding:"required"`
	SalePrice          float64 `json:"sale_price"`
	PurchasePrice      float64 `json:"purchase_price" binding:"required,gt=0"`
	MinStock           float64 `json:"min_stock"`
	MeasurementUnit    string  `json:"measurement_unit" binding:"required"`
	ForElaborationOnly bool    `json:"for_elaboration_only"`
}

// UpdateManufacturedRequest mirrors CreateManufacturedRequest for updates. A
// non-nil Recipe replaces the stored recipe wholesale.
type UpdateManufacturedRequest struct {
	Name            string              `json:"name" binding:"required"`
	SalePrice       float64             `json:"sale_price" binding:"required,gt=0"`
	Description     *string             `json:"description"`
	PrepTimeMinutes int                 `json:"prep_time_minutes"`
	Preparation     *string             `json:"preparation"`
	Recipe          []RecipeLineRequest `json:"recipe"`
}

// CatalogService defines the interface for article catalog business logic.
type CatalogService interface {
	CreateIngredient(req CreateIngredientRequest) (*models.Article, error)
	CreateManufactured(req CreateManufacturedRequest) (*models.Article, error)
	GetArticleByID(id int64) (*models.Article, error)
	GetArticles(filters models.ArticleFilters) ([]models.Article, int, error)
	UpdateIngredient(id int64, req UpdateIngredientRequest) (*models.Article, error)
	UpdateManufactured(id int64, req UpdateManufacturedRequest) (*models.Article, error)
	SetArticleActive(id int64, active bool) error
	DeleteArticle(id int64) error
}

type catalogService struct {
	articleRepo repositories.ArticleRepository
	db          *sql.DB
	tx          repositories.Transactor
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(articleRepo repositories.ArticleRepository, db *sql.DB, tx repositories.Transactor) CatalogService {
	return &catalogService{articleRepo: articleRepo, db: db, tx: tx}
}

func (s *catalogService) CreateIngredient(req CreateIngredientRequest) (*models.Article, error) {
	article := &models.Article{
		Name:      req.Name,
		SalePrice: req.SalePrice,
		IsActive:  true,
		Type:      models.ArticleTypeIngredient,
		Ingredient: &models.IngredientDetail{
			PurchasePrice:      req.PurchasePrice,
			CurrentStock:       req.CurrentStock,
			MinStock:           req.MinStock,
			MeasurementUnit:    req.MeasurementUnit,
			ForElaborationOnly: req.ForElaborationOnly,
		},
	}
	if article.Ingredient.ForElaborationOnly {
		article.SalePrice = 0
	} else if article.SalePrice <= 0 {
		return nil, fmt.Errorf("%w: sellable ingredients require a positive sale price", ErrValidation)
	}

	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		_, err := s.articleRepo.CreateArticle(tx, article)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return s.articleRepo.GetArticleByID(s.db, article.ID)
}

// CreateManufactured creates the article and its recipe in one transaction, so
// a manufactured article never exists without a recipe.
func (s *catalogService) CreateManufactured(req CreateManufacturedRequest) (*models.Article, error) {
	lines, err := s.validateRecipe(req.Recipe)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Name:      req.Name,
		SalePrice: req.SalePrice,
		IsActive:  true,
		Type:      models.ArticleTypeManufactured,
		Manufactured: &models.ManufacturedDetail{
			Description:     req.Description,
			PrepTimeMinutes: req.PrepTimeMinutes,
			Preparation:     req.Preparation,
		},
	}

	err = s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if _, err := s.articleRepo.CreateArticle(tx, article); err != nil {
			return err
		}
		return s.articleRepo.ReplaceRecipe(tx, article.ID, lines)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create manufactured article: %w", err)
	}
	return s.articleRepo.GetArticleByID(s.db, article.ID)
}

// validateRecipe checks every line references an existing, distinct ingredient
// article with a positive quantity.
func (s *catalogService) validateRecipe(req []RecipeLineRequest) ([]models.RecipeLine, error) {
	if len(req) == 0 {
		return nil, fmt.Errorf("%w: a manufactured article requires at least one recipe line", ErrRecipeMissing)
	}

	seen := make(map[int64]bool, len(req))
	lines := make([]models.RecipeLine, 0, len(req))
	for _, rl := range req {
		if rl.Quantity <= 0 {
			return nil, fmt.Errorf("%w: recipe quantity for ingredient %d must be positive", ErrValidation, rl.IngredientID)
		}
		if seen[rl.IngredientID] {
			return nil, fmt.Errorf("%w: ingredient %d appears twice in the recipe", ErrValidation, rl.IngredientID)
		}
		seen[rl.IngredientID] = true

		ingredient, err := s.articleRepo.GetArticleByID(s.db, rl.IngredientID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: ID %d", ErrIngredientNotFound, rl.IngredientID)
			}
			return nil, fmt.Errorf("failed to load recipe ingredient %d: %w", rl.IngredientID, err)
		}
		// Recipes are single-level: only ingredient articles may appear.
		if ingredient.Type != models.ArticleTypeIngredient {
			return nil, fmt.Errorf("%w: recipe line references %s (ID: %d), which is not an ingredient",
				ErrValidation, ingredient.Name, ingredient.ID)
		}

		lines = append(lines, models.RecipeLine{IngredientID: rl.IngredientID, Quantity: rl.Quantity})
	}
	return lines, nil
}

func (s *catalogService) GetArticleByID(id int64) (*models.Article, error) {
	article, err := s.articleRepo.GetArticleByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return article, nil
}

func (s *catalogService) GetArticles(filters models.ArticleFilters) ([]models.Article, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Type != nil && *filters.Type != "" &&
		*filters.Type != models.ArticleTypeIngredient && *filters.Type != models.ArticleTypeManufactured {
		return nil, 0, fmt.Errorf("%w: unknown article type %q", ErrValidation, *filters.Type)
	}
	articles, total, err := s.articleRepo.GetArticles(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get articles: %w", err)
	}
	return articles, total, nil
}

func (s *catalogService) UpdateIngredient(id int64, req UpdateIngredientRequest) (*models.Article, error) {
	existing, err := s.GetArticleByID(id)
	if err != nil {
		return nil, err
	}
	if existing.Type != models.ArticleTypeIngredient {
		return nil, fmt.Errorf("%w: article %d is not an ingredient", ErrValidation, id)
	}

	existing.Name = req.Name
	existing.SalePrice = req.SalePrice
	existing.Ingredient.PurchasePrice = req.PurchasePrice
	existing.Ingredient.MinStock = req.MinStock
	existing.Ingredient.MeasurementUnit = req.MeasurementUnit
	existing.Ingredient.ForElaborationOnly = req.ForElaborationOnly
	if existing.Ingredient.ForElaborationOnly {
		existing.SalePrice = 0
	} else if existing.SalePrice <= 0 {
		return nil, fmt.Errorf("%w: sellable ingredients require a positive sale price", ErrValidation)
	}

	err = s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		return s.articleRepo.UpdateArticle(tx, existing)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update ingredient %d: %w", id, err)
	}
	return s.articleRepo.GetArticleByID(s.db, id)
}

func (s *catalogService) UpdateManufactured(id int64, req UpdateManufacturedRequest) (*models.Article, error) {
	existing, err := s.GetArticleByID(id)
	if err != nil {
		return nil, err
	}
	if existing.Type != models.ArticleTypeManufactured {
		return nil, fmt.Errorf("%w: article %d is not a manufactured article", ErrValidation, id)
	}

	var lines []models.RecipeLine
	if req.Recipe != nil {
		lines, err = s.validateRecipe(req.Recipe)
		if err != nil {
			return nil, err
		}
	}

	existing.Name = req.Name
	existing.SalePrice = req.SalePrice
	existing.Manufactured.Description = req.Description
	existing.Manufactured.PrepTimeMinutes = req.PrepTimeMinutes
	existing.Manufactured.Preparation = req.Preparation

	err = s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if err := s.articleRepo.UpdateArticle(tx, existing); err != nil {
			return err
		}
		if lines != nil {
			return s.articleRepo.ReplaceRecipe(tx, id, lines)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update manufactured article %d: %w", id, err)
	}
	return s.articleRepo.GetArticleByID(s.db, id)
}

func (s *catalogService) SetArticleActive(id int64, active bool) error {
	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		return s.articleRepo.SetArticleActive(tx, id, active)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrArticleNotFound, id)
		}
		return fmt.Errorf("failed to set active flag for article %d: %w", id, err)
	}
	return nil
}

func (s *catalogService) DeleteArticle(id int64) error {
	err := s.tx.WithinTransaction(func(tx repositories.SQLExecutor) error {
		return s.articleRepo.DeleteArticle(tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrArticleNotFound, id)
		}
		return fmt.Errorf("failed to delete article %d: %w", id, err)
	}
	return nil
}
