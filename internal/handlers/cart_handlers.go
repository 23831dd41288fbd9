package handlers

import (
	"errors"
	"net/http"

	"buensabor_backend/internal/services"
	"buensabor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler holds the cart service.
type CartHandler struct {
	cartService services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cs services.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

func parseCustomerID(c *gin.Context) (int64, bool) {
	idStr := c.Param("customerId")
	customerID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid customer ID format.", err.Error()))
		return 0, false
	}
	return customerID, true
}

// GetCart handles fetching (or lazily creating) the customer's cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	customerID, ok := parseCustomerID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetOrCreateCart(customerID)
	if err != nil {
		utils.LogError(err, "GetCart: Error from cartService.GetOrCreateCart")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch cart.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddArticle handles adding an article to the customer's cart.
func (h *CartHandler) AddArticle(c *gin.Context) {
	customerID, ok := parseCustomerID(c)
	if !ok {
		return
	}

	var req services.AddCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddArticle: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cart, err := h.cartService.AddArticle(customerID, req)
	if err != nil {
		utils.LogError(err, "AddArticle: Error from cartService.AddArticle")
		if errors.Is(err, services.ErrArticleNotFound) || errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "A referenced resource was not found.", err.Error()))
		} else if errors.Is(err, services.ErrArticleUnavailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeUnprocessable, "Article cannot be added to the cart.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cart line.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add article to cart.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateLine handles changing a cart line's quantity. Zero removes the line.
func (h *CartHandler) UpdateLine(c *gin.Context) {
	customerID, ok := parseCustomerID(c)
	if !ok {
		return
	}
	lineIDStr := c.Param("lineId")
	lineID, err := utils.StrToInt64(lineIDStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cart line ID format.", err.Error()))
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cart, err := h.cartService.SetLineQuantity(customerID, lineID, *req.Quantity)
	if err != nil {
		utils.LogError(err, "UpdateLine: Error from cartService.SetLineQuantity")
		if errors.Is(err, services.ErrCartLineNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cart line not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update cart line.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveLine handles removing a single cart line.
func (h *CartHandler) RemoveLine(c *gin.Context) {
	customerID, ok := parseCustomerID(c)
	if !ok {
		return
	}
	lineIDStr := c.Param("lineId")
	lineID, err := utils.StrToInt64(lineIDStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cart line ID format.", err.Error()))
		return
	}

	cart, err := h.cartService.RemoveLine(customerID, lineID)
	if err != nil {
		utils.LogError(err, "RemoveLine: Error from cartService.RemoveLine")
		if errors.Is(err, services.ErrCartLineNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cart line not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to remove cart line.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart handles emptying the customer's cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	customerID, ok := parseCustomerID(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(customerID); err != nil {
		utils.LogError(err, "ClearCart: Error from cartService.ClearCart")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to clear cart.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
