package paymentControllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	orderControllers "github.com/mdredwanislamsiam/Phi-Mart/controllers/order"
	"github.com/mdredwanislamsiam/Phi-Mart/utils"
	"gorm.io/gorm"
)

var ErrBadTransactionRef = errors.New("malformed transaction reference")

// BridgeResponse represents the payment bridge's session-create response.
type BridgeResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// getBridgeConfig reads the bridge credentials; test mode is flipped on for
// sandbox/dev without changing the endpoint.
func getBridgeConfig() (storeID int, authKey, apiURL string, testMode int, err error) {
	storeID, _ = strconv.Atoi(os.Getenv("PAYMENT_STORE_ID"))
	authKey = os.Getenv("PAYMENT_AUTH_KEY")
	apiURL = os.Getenv("PAYMENT_API_URL")
	testMode = 0

	mode := os.Getenv("PAYMENT_MODE")
	if mode == "sandbox" || mode == "dev" {
		testMode = 1
	}

	if storeID == 0 || authKey == "" || apiURL == "" {
		return 0, "", "", 0, fmt.Errorf("payment bridge configuration missing")
	}
	return storeID, authKey, apiURL, testMode, nil
}

// TransactionRef encodes an order id into the bridge's transaction
// reference format.
func TransactionRef(orderID uint) string {
	return fmt.Sprintf("tr_%d", orderID)
}

// ParseTransactionRef decodes a "tr_<order_id>" reference back to the
// order id.
func ParseTransactionRef(ref string) (uint, error) {
	rest, found := strings.CutPrefix(ref, "tr_")
	if !found || rest == "" {
		return 0, ErrBadTransactionRef
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, ErrBadTransactionRef
	}
	return uint(id), nil
}

// CreateCheckoutSession asks the external bridge to host a payment page
// for the given order and returns the redirect URL. Fail-fast: no retries,
// no local state is written.
func CreateCheckoutSession(amount float64, orderID uint, numItems int) (string, error) {
	storeID, authKey, apiURL, testMode, err := getBridgeConfig()
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"method":  "create",
		"store":   storeID,
		"authkey": authKey,
		"order": map[string]interface{}{
			"ref":         TransactionRef(orderID),
			"test":        testMode,
			"amount":      fmt.Sprintf("%.2f", amount),
			"currency":    os.Getenv("PAYMENT_CURRENCY"),
			"description": fmt.Sprintf("Order #%d (%d items)", orderID, numItems),
		},
		"return": map[string]string{
			"authorised": os.Getenv("PAYMENT_SUCCESS_URL"),
			"declined":   os.Getenv("PAYMENT_FAILURE_URL"),
			"cancelled":  os.Getenv("PAYMENT_CANCEL_URL"),
		},
	}

	jsonData, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach payment bridge: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment bridge error (%d): %s", resp.StatusCode, string(body))
	}

	var bridgeResp BridgeResponse
	if err := json.Unmarshal(body, &bridgeResp); err != nil {
		return "", fmt.Errorf("failed to parse bridge response: %w", err)
	}
	if bridgeResp.Error != nil {
		return "", fmt.Errorf("payment bridge rejected session: %s", bridgeResp.Error.Message)
	}
	if bridgeResp.Order.URL == "" {
		return "", fmt.Errorf("payment bridge returned empty payment URL")
	}
	return bridgeResp.Order.URL, nil
}

// -------- Handlers --------

type initiateInput struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	OrderID  uint    `json:"orderId" binding:"required"`
	NumItems int     `json:"numItems"`
}

// POST /payment/initiate
func InitiatePaymentHandler(c *gin.Context) {
	var input initiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	paymentURL, err := CreateCheckoutSession(input.Amount, input.OrderID, input.NumItems)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_url": paymentURL})
}

// transactionRefFromRequest accepts the bridge's form-encoded callback and
// a JSON body fallback.
func transactionRefFromRequest(c *gin.Context) string {
	if ref := c.PostForm("tran_ref"); ref != "" {
		return ref
	}
	var body struct {
		TranRef string `json:"tran_ref"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.TranRef
	}
	return ""
}

// PaymentSuccessHandler handles the bridge's success callback: decode the
// tr_<order_id> reference, advance the order to ready_to_ship and bounce
// the customer to the dashboard. Malformed or unknown references get an
// explicit 400/404 instead of blowing up the request.
func PaymentSuccessHandler(db *gorm.DB, mailer *utils.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := transactionRefFromRequest(c)
		if ref == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tran_ref"})
			return
		}

		orderID, err := ParseTransactionRef(ref)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed transaction reference"})
			return
		}

		order, err := orderControllers.CompletePayment(db, orderID)
		if err != nil {
			if errors.Is(err, orderControllers.ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			if errors.Is(err, orderControllers.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if mailer != nil && order.User != nil {
			if err := mailer.SendOrderPaidEmail(order.User.Email, order.ID, order.TotalPrice); err != nil {
				log.Printf("failed to send payment confirmation for order %d: %v", order.ID, err)
			}
		}

		dashboard := os.Getenv("PAYMENT_DASHBOARD_URL")
		if dashboard == "" {
			c.JSON(http.StatusOK, gin.H{"message": "Payment recorded", "order": order})
			return
		}
		c.Redirect(http.StatusFound, dashboard)
	}
}
