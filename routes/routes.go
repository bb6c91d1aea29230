package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/utils"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, mailer *utils.EmailService) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Catalog browsing + reviews
	SetupProductRoutes(r, db)

	// User profile (JWT-protected)
	SetupUserRoutes(r, db)

	// Carts (JWT-protected)
	SetupCartRoutes(r, db)

	// Orders (JWT-protected; admin overrides inside)
	SetupOrderRoutes(r, db)

	// Payment bridge
	SetupPaymentRoutes(r, db, mailer)

	// Admin catalog & user management
	SetupAdminRoutes(r, db)
}
