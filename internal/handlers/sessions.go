package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/middleware"
)

type SessionHandler struct {
	auth         *auth.Service
	cookieSecure bool
}

func NewSessionHandler(authSvc *auth.Service, cookieSecure bool) *SessionHandler {
	return &SessionHandler{auth: authSvc, cookieSecure: cookieSecure}
}

func (h *SessionHandler) Register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		mapError(c, err, "Register")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "user": user})
}

func (h *SessionHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		mapError(c, err, "Login")
		return
	}

	c.SetCookie(middleware.CookieName, token, int(h.auth.TokenTTL().Seconds()), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "user": user})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out"})
}

func (h *SessionHandler) Current(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}
