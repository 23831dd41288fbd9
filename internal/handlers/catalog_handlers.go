package handlers

import (
	"errors"
	"net/http"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
	"buensabor_backend/internal/services"
	"buensabor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// CreateIngredient handles registering a new ingredient article.
func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req services.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateIngredient: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	article, err := h.catalogService.CreateIngredient(req)
	if err != nil {
		utils.LogError(err, "CreateIngredient: Error from catalogService.CreateIngredient")
		h.respondCatalogError(c, err, "Failed to create ingredient.")
		return
	}
	c.JSON(http.StatusCreated, article)
}

// CreateManufactured handles registering a manufactured article with its recipe.
func (h *CatalogHandler) CreateManufactured(c *gin.Context) {
	var req services.CreateManufacturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateManufactured: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	article, err := h.catalogService.CreateManufactured(req)
	if err != nil {
		utils.LogError(err, "CreateManufactured: Error from catalogService.CreateManufactured")
		h.respondCatalogError(c, err, "Failed to create manufactured article.")
		return
	}
	c.JSON(http.StatusCreated, article)
}

// GetArticles handles listing the catalog with filters.
func (h *CatalogHandler) GetArticles(c *gin.Context) {
	var filters models.ArticleFilters

	if articleType := c.Query("type"); articleType != "" {
		filters.Type = &articleType
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	filters.OnlyActive = c.Query("only_active") == "true"
	filters.LowStock = c.Query("low_stock") == "true"
	filters.Page, filters.PageSize = parsePagination(c)

	articles, totalCount, err := h.catalogService.GetArticles(filters)
	if err != nil {
		utils.LogError(err, "GetArticles: Error from catalogService.GetArticles")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article filters.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch articles.", "Internal error"))
		}
		return
	}

	if articles == nil {
		articles = []models.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      articles,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetArticleByID handles fetching one article, recipe included.
func (h *CatalogHandler) GetArticleByID(c *gin.Context) {
	idStr := c.Param("id")
	articleID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article ID format.", err.Error()))
		return
	}

	article, err := h.catalogService.GetArticleByID(articleID)
	if err != nil {
		utils.LogError(err, "GetArticleByID: Error from catalogService.GetArticleByID for ID "+idStr)
		if errors.Is(err, services.ErrArticleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch article.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, article)
}

// UpdateIngredient handles updating an ingredient article.
func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	idStr := c.Param("id")
	articleID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article ID format.", err.Error()))
		return
	}

	var req services.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateIngredient: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	article, err := h.catalogService.UpdateIngredient(articleID, req)
	if err != nil {
		utils.LogError(err, "UpdateIngredient: Error from catalogService.UpdateIngredient for ID "+idStr)
		h.respondCatalogError(c, err, "Failed to update ingredient.")
		return
	}
	c.JSON(http.StatusOK, article)
}

// UpdateManufactured handles updating a manufactured article and its recipe.
func (h *CatalogHandler) UpdateManufactured(c *gin.Context) {
	idStr := c.Param("id")
	articleID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article ID format.", err.Error()))
		return
	}

	var req services.UpdateManufacturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateManufactured: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	article, err := h.catalogService.UpdateManufactured(articleID, req)
	if err != nil {
		utils.LogError(err, "UpdateManufactured: Error from catalogService.UpdateManufactured for ID "+idStr)
		h.respondCatalogError(c, err, "Failed to update manufactured article.")
		return
	}
	c.JSON(http.StatusOK, article)
}

// SetArticleActive handles activating or deactivating an article.
func (h *CatalogHandler) SetArticleActive(c *gin.Context) {
	idStr := c.Param("id")
	articleID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article ID format.", err.Error()))
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.catalogService.SetArticleActive(articleID, *req.Active); err != nil {
		utils.LogError(err, "SetArticleActive: Error from catalogService.SetArticleActive for ID "+idStr)
		if errors.Is(err, services.ErrArticleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update article.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article updated successfully"})
}

// DeleteArticle handles deleting an article.
func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	idStr := c.Param("id")
	articleID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article ID format.", err.Error()))
		return
	}

	if err := h.catalogService.DeleteArticle(articleID); err != nil {
		utils.LogError(err, "DeleteArticle: Error from catalogService.DeleteArticle for ID "+idStr)
		if errors.Is(err, services.ErrArticleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Article not found to delete.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Failed to delete article.", err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func (h *CatalogHandler) respondCatalogError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, services.ErrArticleNotFound) || errors.Is(err, services.ErrIngredientNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "A referenced article was not found.", err.Error()))
	} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrRecipeMissing) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article data.", err.Error()))
	} else if errors.Is(err, repositories.ErrDuplicateKey) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "An article with that name already exists.", err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}
