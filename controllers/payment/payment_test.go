package paymentControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTransactionRefRoundTrip(t *testing.T) {
	ref := TransactionRef(42)
	assert.Equal(t, "tr_42", ref)

	id, err := ParseTransactionRef(ref)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseTransactionRefMalformed(t *testing.T) {
	for _, ref := range []string{"", "tr_", "tr_abc", "order_42", "42"} {
		_, err := ParseTransactionRef(ref)
		assert.ErrorIs(t, err, ErrBadTransactionRef, "ref %q", ref)
	}
}

func setBridgeEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("PAYMENT_STORE_ID", "12345")
	t.Setenv("PAYMENT_AUTH_KEY", "test-auth-key")
	t.Setenv("PAYMENT_API_URL", apiURL)
	t.Setenv("PAYMENT_MODE", "sandbox")
	t.Setenv("PAYMENT_CURRENCY", "USD")
}

func TestCreateCheckoutSession(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order": map[string]string{"ref": "BRIDGE-REF", "url": "https://pay.example/session/1"},
		})
	}))
	defer srv.Close()
	setBridgeEnv(t, srv.URL)

	paymentURL, err := CreateCheckoutSession(99.90, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/1", paymentURL)

	order := captured["order"].(map[string]interface{})
	assert.Equal(t, "tr_7", order["ref"])
	assert.Equal(t, "99.90", order["amount"])
	assert.Equal(t, float64(1), order["test"])
}

func TestCreateCheckoutSessionBridgeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "21", "message": "invalid auth key"},
		})
	}))
	defer srv.Close()
	setBridgeEnv(t, srv.URL)

	_, err := CreateCheckoutSession(10.00, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid auth key")
}

func TestCreateCheckoutSessionMissingConfig(t *testing.T) {
	t.Setenv("PAYMENT_STORE_ID", "")
	t.Setenv("PAYMENT_AUTH_KEY", "")
	t.Setenv("PAYMENT_API_URL", "")

	_, err := CreateCheckoutSession(10.00, 1, 1)
	assert.Error(t, err)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func seedPendingOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	category := models.Category{Name: "cat-" + uuid.NewString()}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{Name: "widget", Price: 15.00, Stock: 10, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)
	order := &models.Order{
		UserID:     user.ID,
		TotalPrice: 15.00,
		Status:     models.OrderStatusPending,
		Items:      []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: 15.00}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func successRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payment/success", PaymentSuccessHandler(db, nil))
	return r
}

func postCallback(r *gin.Engine, ref string) *httptest.ResponseRecorder {
	form := url.Values{"tran_ref": {ref}}
	req := httptest.NewRequest(http.MethodPost, "/payment/success", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentSuccessAdvancesOrder(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)
	r := successRouter(db)

	w := postCallback(r, TransactionRef(order.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusReadyToShip, reloaded.Status)

	// Replayed callback must not re-fire
	w = postCallback(r, TransactionRef(order.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentSuccessRedirectsToDashboard(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)
	t.Setenv("PAYMENT_DASHBOARD_URL", "https://shop.example/dashboard")
	r := successRouter(db)

	w := postCallback(r, TransactionRef(order.ID))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://shop.example/dashboard", w.Header().Get("Location"))
}

func TestPaymentSuccessMalformedRef(t *testing.T) {
	db := setupTestDB(t)
	r := successRouter(db)

	w := postCallback(r, "not-a-ref")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postCallback(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentSuccessUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	r := successRouter(db)

	w := postCallback(r, TransactionRef(9999))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
