package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/user"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"gorm.io/gorm"
)

// SetupUserRoutes registers the "/user/*" profile endpoints. Requires JWT.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("", userControllers.GetUser(db))    // GET /user
		userGroup.PUT("", userControllers.UpdateUser(db)) // PUT /user
	}
}
