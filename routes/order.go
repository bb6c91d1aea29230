package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/order"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"gorm.io/gorm"
)

// SetupOrderRoutes registers all "/orders/*" endpoints. Listing and reads
// are scoped per caller; status override and deletion are admin-only.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Checkout: convert the caller's cart into an order
		orders.POST("", orderControllers.CreateOrderHandler(db))

		orders.GET("", orderControllers.ListOrdersHandler(db))
		orders.GET("/:id", orderControllers.GetOrderHandler(db))
		orders.POST("/:id/cancel", orderControllers.CancelOrderHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", middleware.RequireAdmin, orderControllers.OrderWebSocketHandler)

		// Administrative override: any status, no transition guard
		orders.PATCH("/:id/update_status", middleware.RequireAdmin, orderControllers.UpdateOrderStatusHandler(db))
		orders.DELETE("/:id", middleware.RequireAdmin, orderControllers.DeleteOrderHandler(db))
	}
}
