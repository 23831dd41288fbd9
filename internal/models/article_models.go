package models

import "time"

// Article type discriminants. An article row is exactly one of the two.
const (
	ArticleTypeIngredient   = "INGREDIENT"
	ArticleTypeManufactured = "MANUFACTURED"
)

// Article is a catalog entry. It is a tagged union: Type selects which of the
// two detail blocks is populated. Manufactured articles are composed solely of
// ingredients, never of other manufactured articles.
type Article struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	SalePrice float64   `json:"sale_price" db:"sale_price"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Ingredient   *IngredientDetail   `json:"ingredient,omitempty"`
	Manufactured *ManufacturedDetail `json:"manufactured,omitempty"`
}

// IngredientDetail holds the stock-tracked fields of an ingredient article.
type IngredientDetail struct {
	PurchasePrice      float64 `json:"purchase_price" db:"purchase_price"`
	CurrentStock       float64 `json:"current_stock" db:"current_stock"`
	MinStock           float64 `json:"min_stock" db:"min_stock"`
	MeasurementUnit    string  `json:"measurement_unit" db:"measurement_unit"` // e.g. g, ml, unit
	ForElaborationOnly bool    `json:"for_elaboration_only" db:"for_elaboration_only"`
}

// ManufacturedDetail holds the recipe-backed fields of a manufactured article.
type ManufacturedDetail struct {
	Description     *string      `json:"description,omitempty" db:"description"`
	PrepTimeMinutes int          `json:"prep_time_minutes" db:"prep_time_minutes"`
	Preparation     *string      `json:"preparation,omitempty" db:"preparation"`
	Recipe          []RecipeLine `json:"recipe,omitempty"`
}

// RecipeLine is one (ingredient, quantity per unit produced) pair of a
// manufactured article's bill of materials.
type RecipeLine struct {
	ID           int64     `json:"id" db:"id"`
	ArticleID    int64     `json:"article_id" db:"article_id"` // owning manufactured article
	IngredientID int64     `json:"ingredient_id" db:"ingredient_id" binding:"required"`
	Quantity     float64   `json:"quantity" db:"quantity" binding:"required,gt=0"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Ingredient *Article `json:"ingredient_article,omitempty"` // joined ingredient row
}

// ArticleFilters defines the available filters for querying the catalog.
type ArticleFilters struct {
	Type       *string `form:"type"`
	Search     *string `form:"search"`
	OnlyActive bool    `form:"only_active"`
	LowStock   bool    `form:"low_stock"` // ingredients at or below their minimum stock
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
