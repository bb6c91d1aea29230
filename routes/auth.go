package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/user"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", userControllers.Register(db))
		authGroup.POST("/login", userControllers.Login(db))
	}
}
