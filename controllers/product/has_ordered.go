package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"gorm.io/gorm"
)

// HasOrdered reports whether the caller has ever purchased this product.
// Read-only check; nothing (including reviews) is gated on it.
func HasOrdered(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var count int64
		err = db.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND order_items.product_id = ?", middleware.UserID(c), uint(productID)).
			Count(&count).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check order history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"has_ordered": count > 0})
	}
}
