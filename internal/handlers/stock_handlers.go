package handlers

import (
	"errors"
	"net/http"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/services"
	"buensabor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StockHandler holds the stock service.
type StockHandler struct {
	stockService services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(ss services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

// GetIngredientStock handles reading the current stock of one ingredient.
func (h *StockHandler) GetIngredientStock(c *gin.Context) {
	idStr := c.Param("id")
	ingredientID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ingredient ID format.", err.Error()))
		return
	}

	stock, name, err := h.stockService.GetAvailable(ingredientID)
	if err != nil {
		utils.LogError(err, "GetIngredientStock: Error from stockService.GetAvailable for ID "+idStr)
		if errors.Is(err, services.ErrIngredientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ingredient not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ingredient_id": ingredientID,
		"name":          name,
		"current_stock": stock,
	})
}

// ReplenishStock handles recording incoming stock for an ingredient.
func (h *StockHandler) ReplenishStock(c *gin.Context) {
	var req services.ReplenishStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReplenishStock: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	if userID, exists := c.Get("userID"); exists {
		if id, ok := userID.(int64); ok {
			req.UserID = &id
		}
	}

	movement, err := h.stockService.Replenish(req)
	if err != nil {
		utils.LogError(err, "ReplenishStock: Error from stockService.Replenish")
		if errors.Is(err, services.ErrIngredientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Ingredient not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid replenishment request.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to replenish stock.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// GetStockMovements handles listing the stock audit trail with filters.
func (h *StockHandler) GetStockMovements(c *gin.Context) {
	var filters services.StockMovementFilters

	if articleIDStr := c.Query("article_id"); articleIDStr != "" {
		articleID, err := utils.StrToInt64(articleIDStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article_id format.", err.Error()))
			return
		}
		filters.ArticleID = &articleID
	}
	if orderIDStr := c.Query("order_id"); orderIDStr != "" {
		orderID, err := utils.StrToInt64(orderIDStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order_id format.", err.Error()))
			return
		}
		filters.OrderID = &orderID
	}
	if movementType := c.Query("movement_type"); movementType != "" {
		filters.MovementType = &movementType
	}
	filters.Page, filters.PageSize = parsePagination(c)

	movements, totalCount, err := h.stockService.GetMovements(filters)
	if err != nil {
		utils.LogError(err, "GetStockMovements: Error from stockService.GetMovements")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock movements.", "Internal error"))
		return
	}

	if movements == nil {
		movements = []models.StockMovement{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      movements,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
