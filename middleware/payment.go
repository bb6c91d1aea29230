package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// PaymentCallbackAuth verifies the payment bridge's callback signature.
// The bridge signs secret + selected form fields with SHA1; sandbox and dev
// modes skip the check so local callbacks can be faked.
func PaymentCallbackAuth() gin.HandlerFunc {
	secretKey := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	mode := strings.ToLower(os.Getenv("PAYMENT_MODE"))

	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" || mode == "" {
			c.Next()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form for signature verification"})
			c.Abort()
			return
		}

		providedCheck := c.PostForm("tran_check")
		if providedCheck == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing tran_check signature"})
			c.Abort()
			return
		}

		fieldList := []string{
			"tran_ref", "tran_amount", "tran_currency", "tran_status",
		}
		parts := []string{secretKey}
		for _, f := range fieldList {
			parts = append(parts, strings.TrimSpace(c.PostForm(f)))
		}

		h := sha1.New()
		h.Write([]byte(strings.Join(parts, ":")))
		calculated := hex.EncodeToString(h.Sum(nil))

		if !strings.EqualFold(calculated, providedCheck) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid callback signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}
