package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/cart"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"gorm.io/gorm"
)

// SetupCartRoutes registers all "/carts/*" endpoints. Requires JWT.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	carts := r.Group("/carts")
	carts.Use(middleware.ValidateToken)
	{
		carts.POST("", cartControllers.CreateCartHandler(db)) // get-or-create, idempotent
		carts.GET("/:id", cartControllers.GetCartHandler(db))
		carts.DELETE("/:id", cartControllers.DeleteCartHandler(db))

		carts.POST("/:id/items", cartControllers.AddCartItemHandler(db))
		carts.PATCH("/:id/items/:item_id", cartControllers.UpdateCartItemHandler(db))
		carts.DELETE("/:id/items/:item_id", cartControllers.DeleteCartItemHandler(db))
	}
}
