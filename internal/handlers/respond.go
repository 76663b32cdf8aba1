package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/store"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// mapError translates sentinel outcomes to the HTTP taxonomy. Unexpected
// faults are logged with request context and surface as a generic 500, never
// internal detail.
func mapError(c *gin.Context, err error, requestInfo string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		respondError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, store.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, "Quantity must be at least 1")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, "Authentication required")
	default:
		log.Printf("Error processing %s: %v", requestInfo, err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
