package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound      = errors.New("no such cart found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOutOfStock        = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

// -------- Request Structs --------

type CreateOrderRequest struct {
	CartID string `json:"cart_id" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ParseOrderStatus maps a request string onto the enumerated status set.
func ParseOrderStatus(status string) (models.OrderStatus, error) {
	s := models.OrderStatus(strings.ToLower(status))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// -------- Core Logic --------

// CreateOrderFromCart converts a cart into an immutable order snapshot.
//
// Everything that mutates state runs in one transaction: stock is locked
// and decremented, the order and its items are created with prices frozen
// at this moment, and the cart is emptied. Any failure rolls the whole
// thing back, so an order without items or a decrement without an order
// can never be observed.
func CreateOrderFromCart(db *gorm.DB, userID, cartID string) (*models.Order, error) {
	var cart models.Cart
	// Someone else's cart is reported as not found, same masking as orders
	if err := db.Preload("Items").Where("id = ? AND user_id = ?", cartID, userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var total float64
		var orderItems []models.OrderItem

		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return err
			}

			// Guarded decrement: the WHERE clause keeps stock from going
			// negative even under concurrent checkouts.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}

			// Freeze the unit price; later product edits must not touch it
			total += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		order = models.Order{
			UserID:     userID,
			Items:      orderItems,
			TotalPrice: total,
			Status:     models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Empty the basket: checkout consumes the cart
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Items.Product").First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	broadcastOrderEvent("order_created", &order)
	return &order, nil
}

// loadScopedOrder fetches an order visible to the caller. Someone else's
// order is reported as not found, never as forbidden.
func loadScopedOrder(db *gorm.DB, orderID uint, userID string, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items.Product").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// CancelOrder moves an order to cancelled. Allowed for the owner or an
// administrator, and only while the order has not shipped. Stock is not
// restored on cancellation.
func CancelOrder(db *gorm.DB, orderID uint, userID string, isAdmin bool) (*models.Order, error) {
	order, err := loadScopedOrder(db, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !order.Status.Cancellable() {
		return nil, ErrInvalidTransition
	}
	if err := db.Model(order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusCancelled
	broadcastOrderEvent("order_cancelled", order)
	return order, nil
}

// SetOrderStatus is the administrative override: it accepts any enumerated
// status with no forward-only validation. This permissiveness is the
// documented escape hatch for manual fulfillment tracking, not an
// oversight; guarded transitions live in CancelOrder and CompletePayment.
func SetOrderStatus(db *gorm.DB, orderID uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := db.Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	broadcastOrderEvent("order_status_updated", &order)
	return &order, nil
}

// CompletePayment is the payment bridge's success transition: pending goes
// to ready_to_ship. It is the only automated transition in the system, and
// a duplicate callback on an already-advanced order is rejected so side
// effects cannot fire twice.
func CompletePayment(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("User").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, ErrInvalidTransition
	}
	if err := db.Model(&order).Update("status", models.OrderStatusReadyToShip).Error; err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusReadyToShip
	broadcastOrderEvent("order_paid", &order)
	return &order, nil
}

// DeleteOrder removes an order and its items. Administrative override only;
// normal flow never deletes orders.
func DeleteOrder(db *gorm.DB, orderID uint) error {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

// -------- Handlers --------

// POST /orders
func CreateOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := CreateOrderFromCart(db, middleware.UserID(c), req.CartID)
		if err != nil {
			respondOrderErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Items.Product").Order("created_at DESC")
		if !middleware.IsAdmin(c) {
			query = query.Where("user_id = ?", middleware.UserID(c))
		}
		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		order, err := loadScopedOrder(db, orderID, middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondOrderErr(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:id/cancel
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		order, err := CancelOrder(db, orderID, middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondOrderErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "Order Canceled", "order": order})
	}
}

// PATCH /orders/:id/update_status (admin only, enforced in routes)
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := ParseOrderStatus(req.Status)
		if err != nil {
			respondOrderErr(c, err)
			return
		}
		if _, err := SetOrderStatus(db, orderID, status); err != nil {
			respondOrderErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "Order status updated to " + string(status)})
	}
}

// DELETE /orders/:id (admin only, enforced in routes)
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseOrderID(c)
		if !ok {
			return
		}
		if err := DeleteOrder(db, orderID); err != nil {
			respondOrderErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

func respondOrderErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No such cart found"})
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
	case errors.Is(err, ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for one or more products"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Order status transition not allowed"})
	case errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
