package services

import (
	"fmt"
	"sort"

	"buensabor_backend/internal/models"
)

// IngredientDemand is one (ingredient, quantity) requirement produced by
// expanding an ordered article.
type IngredientDemand struct {
	IngredientID int64
	Quantity     float64
}

// ResolveIngredientDemand expands an article into the ingredient quantities
// needed to produce quantityOrdered units of it.
//
// An ingredient article maps to itself. A manufactured article maps to its
// recipe lines scaled by the ordered quantity; expansion is single-level
// because recipes reference ingredients only. A manufactured article with no
// recipe cannot be ordered.
func ResolveIngredientDemand(article *models.Article, quantityOrdered int) ([]IngredientDemand, error) {
	switch article.Type {
	case models.ArticleTypeIngredient:
		return []IngredientDemand{{IngredientID: article.ID, Quantity: float64(quantityOrdered)}}, nil

	case models.ArticleTypeManufactured:
		if article.Manufactured == nil || len(article.Manufactured.Recipe) == 0 {
			return nil, fmt.Errorf("%w: article %s (ID: %d)", ErrRecipeMissing, article.Name, article.ID)
		}
		demands := make([]IngredientDemand, 0, len(article.Manufactured.Recipe))
		for _, line := range article.Manufactured.Recipe {
			demands = append(demands, IngredientDemand{
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity * float64(quantityOrdered),
			})
		}
		return demands, nil

	default:
		return nil, fmt.Errorf("%w: article ID %d has type %q", ErrUnknownArticleType, article.ID, article.Type)
	}
}

// AccumulateDemand folds per-line demand into one map keyed by ingredient id,
// so lines and recipes sharing an ingredient are checked against stock as a
// single combined requirement.
func AccumulateDemand(total map[int64]float64, demands []IngredientDemand) {
	for _, d := range demands {
		total[d.IngredientID] += d.Quantity
	}
}

// sortedIngredientIDs returns the demand keys in ascending order so stock rows
// are always locked in a consistent order across concurrent orders.
func sortedIngredientIDs(demand map[int64]float64) []int64 {
	ids := make([]int64, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
