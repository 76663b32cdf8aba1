// Package handlers translates HTTP requests into store and auth operations
// and renders the JSON envelope every endpoint shares.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/live"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

// NewRouter wires every route. Middleware order matters: authentication
// attaches the user before the role gate and the handlers run.
func NewRouter(stores *store.Stores, authSvc *auth.Service, feed *live.Hub, cookieSecure bool) *gin.Engine {
	router := gin.Default()

	products := NewProductHandler(stores.Products, feed)
	carts := NewCartHandler(stores.Carts)
	sessions := NewSessionHandler(authSvc, cookieSecure)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	api := router.Group("/api")

	sessionRoutes := api.Group("/sessions")
	{
		sessionRoutes.POST("/register", sessions.Register)
		sessionRoutes.POST("/login", sessions.Login)
		sessionRoutes.GET("/logout", sessions.Logout)
		sessionRoutes.POST("/logout", sessions.Logout)
		sessionRoutes.GET("/current", middleware.RequireAuth(authSvc), sessions.Current)
	}

	productRoutes := api.Group("/products", middleware.RequireAuth(authSvc))
	{
		productRoutes.GET("", products.List)
		productRoutes.GET("/:pid", products.Get)

		adminRoutes := productRoutes.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("", products.Create)
			adminRoutes.PUT("/:pid", products.Update)
			adminRoutes.DELETE("/:pid", products.Delete)
		}
	}

	// The live product feed upgrades to a websocket; it shares the product
	// routes' authentication but lives outside the /products tree.
	api.GET("/live", middleware.RequireAuth(authSvc), products.Live)

	cartRoutes := api.Group("/carts", middleware.RequireAuth(authSvc))
	{
		cartRoutes.POST("", carts.Create)
		cartRoutes.GET("/:cid", carts.Get)
		cartRoutes.POST("/:cid/product/:pid", carts.AddProduct)
		cartRoutes.DELETE("/:cid/product/:pid", carts.RemoveProduct)
		cartRoutes.PUT("/:cid", carts.Replace)
		cartRoutes.DELETE("/:cid", carts.Clear)
	}

	return router
}
