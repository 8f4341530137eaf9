package routes

import (
	"net/http"

	"food-ordering-api/handlers"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Orders    *handlers.OrderHandler
	Payments  *handlers.PaymentHandler
	Catalog   *handlers.CatalogHandler
	JWTSecret []byte
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Food Ordering API",
		})
	})

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/restaurants/:id/branches", h.Catalog.ListBranches)
		public.GET("/restaurants/:id/menu", h.Catalog.GetMenu)
		public.GET("/payment-states", handlers.GetPaymentStates)

		// Signed by the payment processor, not by a user token
		public.POST("/payments/webhook", h.Payments.Webhook)
	}

	// ── Authenticated routes ───────────────────────────────────────
	orders := r.Group("/api/order")
	orders.Use(middleware.Authenticate(h.JWTSecret), middleware.RequireIdentity())
	{
		orders.GET("", h.Orders.ListOrders)
		orders.POST("", h.Orders.CreateOrder)
		orders.PUT("", h.Orders.UpdateOrderStatus)
		orders.GET("/:id/history", h.Orders.OrderHistory)
	}
}
