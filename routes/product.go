package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/mdredwanislamsiam/Phi-Mart/controllers/product"
	reviewControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/review"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"gorm.io/gorm"
)

// SetupProductRoutes registers public catalog browsing plus the review
// endpoints nested under a product.
func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(db))
		products.GET("/:id", productcontroller.GetProductByID(db))

		// Purchase-history existence check (auth required, read-only)
		products.GET("/:id/has-ordered", middleware.ValidateToken, productcontroller.HasOrdered(db))

		// ──────────────── Reviews ────────────────
		products.GET("/:id/reviews", reviewControllers.ListReviews(db))
		products.GET("/:id/reviews/:review_id", reviewControllers.GetReview(db))
		products.POST("/:id/reviews", middleware.ValidateToken, reviewControllers.CreateReview(db))
		products.PATCH("/:id/reviews/:review_id", middleware.ValidateToken, reviewControllers.UpdateReview(db))
		products.DELETE("/:id/reviews/:review_id", middleware.ValidateToken, reviewControllers.DeleteReview(db))
	}

	categories := r.Group("/categories")
	{
		categories.GET("", productcontroller.GetAllCategories(db))
		categories.GET("/:id", productcontroller.GetCategoryByID(db))
	}
}
