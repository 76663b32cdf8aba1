package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

type CartHandler struct {
	carts store.CartStore
}

func NewCartHandler(carts store.CartStore) *CartHandler {
	return &CartHandler{carts: carts}
}

// authorize enforces cart ownership: only the cart's owner (or an admin) may
// read or mutate it.
func (h *CartHandler) authorize(c *gin.Context, cartID string) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if user.Role == models.RoleAdmin || user.CartID.Hex() == cartID {
		return true
	}
	respondError(c, http.StatusForbidden, "Access denied")
	return false
}

func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.carts.Create(c.Request.Context())
	if err != nil {
		mapError(c, err, "CreateCart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": cart})
}

func (h *CartHandler) Get(c *gin.Context) {
	id := c.Param("cid")
	if !h.authorize(c, id) {
		return
	}

	cart, err := h.carts.GetByID(c.Request.Context(), id)
	if err != nil {
		mapError(c, err, fmt.Sprintf("GetCart (ID: %s)", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cart})
}

func (h *CartHandler) AddProduct(c *gin.Context) {
	cartID := c.Param("cid")
	productID := c.Param("pid")
	if !h.authorize(c, cartID) {
		return
	}

	quantity := 1
	if c.Request.ContentLength > 0 {
		var body struct {
			Quantity *int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
		if body.Quantity != nil {
			quantity = *body.Quantity
		}
	}

	cart, err := h.carts.AddProduct(c.Request.Context(), cartID, productID, quantity)
	if err != nil {
		mapError(c, err, fmt.Sprintf("AddProductToCart (cart %s, product %s)", cartID, productID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cart})
}

func (h *CartHandler) RemoveProduct(c *gin.Context) {
	cartID := c.Param("cid")
	productID := c.Param("pid")
	if !h.authorize(c, cartID) {
		return
	}

	cart, err := h.carts.RemoveProduct(c.Request.Context(), cartID, productID)
	if err != nil {
		mapError(c, err, fmt.Sprintf("RemoveProductFromCart (cart %s, product %s)", cartID, productID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cart})
}

func (h *CartHandler) Replace(c *gin.Context) {
	cartID := c.Param("cid")
	if !h.authorize(c, cartID) {
		return
	}

	var body struct {
		Products []models.LineItem `json:"products" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	cart, err := h.carts.ReplaceItems(c.Request.Context(), cartID, body.Products)
	if err != nil {
		mapError(c, err, fmt.Sprintf("ReplaceCartItems (cart %s)", cartID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cart})
}

func (h *CartHandler) Clear(c *gin.Context) {
	cartID := c.Param("cid")
	if !h.authorize(c, cartID) {
		return
	}

	cart, err := h.carts.Clear(c.Request.Context(), cartID)
	if err != nil {
		mapError(c, err, fmt.Sprintf("ClearCart (cart %s)", cartID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cart})
}
