package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/live"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

type ProductHandler struct {
	products store.ProductStore
	feed     *live.Hub
}

func NewProductHandler(products store.ProductStore, feed *live.Hub) *ProductHandler {
	return &ProductHandler{products: products, feed: feed}
}

func (h *ProductHandler) List(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")
	page, errP := strconv.Atoi(pageStr)
	limit, errL := strconv.Atoi(limitStr)
	if errP != nil || errL != nil || page < 1 || limit < 1 {
		respondError(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	opts := store.ListOptions{
		Query:    c.Query("query"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	}

	result, err := h.products.List(c.Request.Context(), opts)
	if err != nil {
		mapError(c, err, "ListProducts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"payload":     result.Products,
		"totalPages":  result.TotalPages,
		"prevPage":    result.PrevPage,
		"nextPage":    result.NextPage,
		"page":        result.Page,
		"hasPrevPage": result.HasPrev,
		"hasNextPage": result.HasNext,
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("pid")
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		mapError(c, err, fmt.Sprintf("GetProduct (ID: %s)", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "product": product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input models.Product
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := h.products.Add(c.Request.Context(), &input); err != nil {
		mapError(c, err, "CreateProduct")
		return
	}

	h.feed.Publish(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"status": "success", "product": input})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("pid")
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, patch)
	if err != nil {
		mapError(c, err, fmt.Sprintf("UpdateProduct (ID: %s)", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("pid")
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		mapError(c, err, fmt.Sprintf("DeleteProduct (ID: %s)", id))
		return
	}

	h.feed.Publish(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Product deleted"})
}

// Live hands the connection over to the product feed.
func (h *ProductHandler) Live(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.feed.Serve(c.Writer, c.Request, user)
}
