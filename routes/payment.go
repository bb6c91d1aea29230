package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/payment"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"github.com/mdredwanislamsiam/Phi-Mart/utils"
	"gorm.io/gorm"
)

// SetupPaymentRoutes registers the payment bridge endpoints.
func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, mailer *utils.EmailService) {
	payment := r.Group("/payment")
	{
		payment.POST("/initiate", middleware.ValidateToken, paymentControllers.InitiatePaymentHandler)

		// Success callback comes from the bridge, not the user; signature
		// verification replaces JWT here.
		payment.POST("/success",
			middleware.PaymentCallbackAuth(),
			paymentControllers.PaymentSuccessHandler(db, mailer),
		)
	}
}
