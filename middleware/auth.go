package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"github.com/mdredwanislamsiam/Phi-Mart/utils"
)

// ValidateToken authenticates the request and stores user_id and role on
// the context for downstream handlers.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	c.Set("user_id", claims.Subject)
	c.Set("user_email", claims.Email)
	c.Set("role", claims.Role)

	c.Next()
}

// RequireAdmin runs after ValidateToken and rejects non-administrators.
// Authenticated-but-unauthorized is 403, unlike the 401s above.
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
		c.Abort()
		return
	}
	c.Next()
}

// IsAdmin reports whether the current request carries the admin role.
func IsAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	return exists && role == models.RoleAdmin
}

// UserID returns the authenticated user id set by ValidateToken.
func UserID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}
