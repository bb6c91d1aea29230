package orderControllers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
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
		&models.Review{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Name:     "Test User",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	category := models.Category{Name: "Category for " + name}
	require.NoError(t, db.Create(&category).Error)
	product := &models.Product{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCart(t *testing.T, db *gorm.DB, userID string, items ...models.CartItem) *models.Cart {
	t.Helper()
	cart := &models.Cart{ID: uuid.NewString(), UserID: userID}
	require.NoError(t, db.Create(cart).Error)
	for i := range items {
		items[i].CartID = cart.ID
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return cart
}

func TestCreateOrderFromCartFreezesPrices(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	shirt := seedProduct(t, db, "shirt", 25.50, 10)
	mug := seedProduct(t, db, "mug", 8.00, 10)
	cart := seedCart(t, db, user.ID,
		models.CartItem{ProductID: shirt.ID, Quantity: 2},
		models.CartItem{ProductID: mug.ID, Quantity: 3},
	)

	order, err := CreateOrderFromCart(db, user.ID, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 2*25.50+3*8.00, order.TotalPrice, 1e-9)
	require.Len(t, order.Items, 2)

	// Later price edits must not touch the snapshot
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", shirt.ID).Update("price", 99.99).Error)

	var reloaded models.Order
	require.NoError(t, db.Preload("Items").First(&reloaded, order.ID).Error)
	assert.InDelta(t, 2*25.50+3*8.00, reloaded.TotalPrice, 1e-9)
	for _, item := range reloaded.Items {
		if item.ProductID == shirt.ID {
			assert.InDelta(t, 25.50, item.Price, 1e-9)
		}
	}
}

func TestCreateOrderFromCartEmptiesCartAndDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	product := seedProduct(t, db, "lamp", 40.00, 7)
	cart := seedCart(t, db, user.ID, models.CartItem{ProductID: product.ID, Quantity: 5})

	_, err := CreateOrderFromCart(db, user.ID, cart.ID)
	require.NoError(t, err)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)
}

func TestCreateOrderFromCartEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	cart := seedCart(t, db, user.ID)

	_, err := CreateOrderFromCart(db, user.ID, cart.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderFromCartMissingCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)

	_, err := CreateOrderFromCart(db, user.ID, "no-such-cart")
	assert.ErrorIs(t, err, ErrCartNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderFromForeignCartMasked(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RoleUser)
	stranger := seedUser(t, db, models.RoleUser)
	product := seedProduct(t, db, "book", 12.00, 5)
	cart := seedCart(t, db, owner.ID, models.CartItem{ProductID: product.ID, Quantity: 1})

	_, err := CreateOrderFromCart(db, stranger.ID, cart.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCreateOrderFromCartOutOfStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	cheap := seedProduct(t, db, "cheap", 1.00, 100)
	scarce := seedProduct(t, db, "scarce", 500.00, 1)
	cart := seedCart(t, db, user.ID,
		models.CartItem{ProductID: cheap.ID, Quantity: 10},
		models.CartItem{ProductID: scarce.ID, Quantity: 2},
	)

	_, err := CreateOrderFromCart(db, user.ID, cart.ID)
	assert.ErrorIs(t, err, ErrOutOfStock)

	// All-or-nothing: no order, no item rows, no stock movement, cart intact
	var orders, orderItems, cartItems int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&orderItems).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&cartItems).Error)
	assert.Zero(t, orders)
	assert.Zero(t, orderItems)
	assert.Equal(t, int64(2), cartItems)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, cheap.ID).Error)
	assert.Equal(t, 100, reloaded.Stock)
}

func placeOrder(t *testing.T, db *gorm.DB, userID string, status models.OrderStatus) *models.Order {
	t.Helper()
	product := seedProduct(t, db, "order-fixture-"+uuid.NewString(), 10.00, 50)
	cart := seedCart(t, db, userID, models.CartItem{ProductID: product.ID, Quantity: 1})
	order, err := CreateOrderFromCart(db, userID, cart.ID)
	require.NoError(t, err)
	if status != models.OrderStatusPending {
		require.NoError(t, db.Model(order).Update("status", status).Error)
		order.Status = status
	}
	return order
}

func TestCancelOrderPending(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, user.ID, models.OrderStatusPending)

	cancelled, err := CancelOrder(db, order.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestCancelOrderTerminalStateRejected(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, user.ID, models.OrderStatusDelivered)

	_, err := CancelOrder(db, order.ID, user.ID, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, reloaded.Status)
}

func TestCancelOrderDoesNotRestoreStock(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	product := seedProduct(t, db, "keyboard", 60.00, 10)
	cart := seedCart(t, db, user.ID, models.CartItem{ProductID: product.ID, Quantity: 4})
	order, err := CreateOrderFromCart(db, user.ID, cart.ID)
	require.NoError(t, err)

	_, err = CancelOrder(db, order.ID, user.ID, false)
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 6, reloaded.Stock)
}

func TestCancelOrderForeignOrderMasked(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RoleUser)
	stranger := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, owner.ID, models.OrderStatusPending)

	_, err := CancelOrder(db, order.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrderAdminMayCancelAnyOrder(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RoleUser)
	admin := seedUser(t, db, models.RoleAdmin)
	order := placeOrder(t, db, owner.ID, models.OrderStatusPending)

	cancelled, err := CancelOrder(db, order.ID, admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestCompletePaymentAdvancesPendingOrder(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, user.ID, models.OrderStatusPending)

	paid, err := CompletePayment(db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyToShip, paid.Status)

	// Duplicate callback must not re-fire
	_, err = CompletePayment(db, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompletePaymentUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	_, err := CompletePayment(db, 4242)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSetOrderStatusIsUnguarded(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, user.ID, models.OrderStatusDelivered)

	// Administrative override may move backwards
	updated, err := SetOrderStatus(db, order.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Ready_To_Ship")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReadyToShip, status)

	_, err = ParseOrderStatus("teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// asUser fakes the JWT middleware for handler-level tests.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func TestGetOrderHandlerMasksForeignOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	owner := seedUser(t, db, models.RoleUser)
	stranger := seedUser(t, db, models.RoleUser)
	order := placeOrder(t, db, owner.ID, models.OrderStatusPending)

	r := gin.New()
	r.GET("/orders/:id", asUser(stranger.ID, models.RoleUser), GetOrderHandler(db))

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uintToString(order.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), owner.ID)
}

func TestListOrdersHandlerScoping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	alice := seedUser(t, db, models.RoleUser)
	bob := seedUser(t, db, models.RoleUser)
	admin := seedUser(t, db, models.RoleAdmin)
	placeOrder(t, db, alice.ID, models.OrderStatusPending)
	placeOrder(t, db, bob.ID, models.OrderStatusPending)

	r := gin.New()
	r.GET("/mine", asUser(alice.ID, models.RoleUser), ListOrdersHandler(db))
	r.GET("/all", asUser(admin.ID, models.RoleAdmin), ListOrdersHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mine", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), alice.ID)
	assert.NotContains(t, w.Body.String(), bob.ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/all", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), alice.ID)
	assert.Contains(t, w.Body.String(), bob.ID)
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
