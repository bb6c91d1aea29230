package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mdredwanislamsiam/Phi-Mart/middleware"
	"github.com/mdredwanislamsiam/Phi-Mart/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product does not exist")
	ErrItemNotFound    = errors.New("cart item not found")
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// -------- Core Logic --------

// GetOrCreateCart returns the user's open cart, creating an empty one on
// first use. The unique index on user_id makes concurrent first calls
// collapse into a single cart.
func GetOrCreateCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{ID: uuid.NewString(), UserID: userID}
	if err := db.Create(&cart).Error; err != nil {
		// Lost the race: another request created the cart first.
		var existing models.Cart
		if ferr := db.Preload("Items.Product").Where("user_id = ?", userID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &cart, nil
}

// loadOwnedCart fetches a cart by id scoped to the caller. A cart owned by
// someone else is reported as not found, never as forbidden.
func loadOwnedCart(db *gorm.DB, cartID, userID string, isAdmin bool) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Preload("Items.Product").Where("id = ?", cartID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if !isAdmin && cart.UserID != userID {
		return nil, ErrCartNotFound
	}
	return &cart, nil
}

// AddItemToCart inserts a (cart, product) row or increments the existing
// one. The ON CONFLICT upsert rides the composite unique index, so two
// concurrent adds for the same product can never produce two rows.
// No stock check happens here; stock is only reconciled at checkout.
func AddItemToCart(db *gorm.DB, cartID string, productID uint, quantity int) (*models.CartItem, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			"added_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	var saved models.CartItem
	if err := db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateItemQuantity replaces (not increments) a cart item's quantity.
func UpdateItemQuantity(db *gorm.DB, cartID string, itemID uint, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	item.Quantity = quantity
	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Product").First(&item, item.ID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// -------- Views --------

type cartItemView struct {
	ID         uint            `json:"id"`
	Product    *models.Product `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice float64         `json:"total_price"`
}

type cartView struct {
	ID     string         `json:"id"`
	UserID string         `json:"user_id"`
	Items  []cartItemView `json:"items"`
	Total  float64        `json:"total"`
}

func renderCart(cart *models.Cart) cartView {
	items := make([]cartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemView{
			ID:         item.ID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			TotalPrice: item.Subtotal(),
		})
	}
	return cartView{ID: cart.ID, UserID: cart.UserID, Items: items, Total: cart.Total()}
}

// -------- Handlers --------

// POST /carts
func CreateCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := GetOrCreateCart(db, middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, renderCart(cart))
	}
}

// GET /carts/:id
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadOwnedCart(db, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondCartErr(c, err)
			return
		}
		c.JSON(http.StatusOK, renderCart(cart))
	}
}

// DELETE /carts/:id
func DeleteCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadOwnedCart(db, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondCartErr(c, err)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(cart).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart deleted"})
	}
}

// POST /carts/:id/items
func AddCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadOwnedCart(db, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondCartErr(c, err)
			return
		}

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := AddItemToCart(db, cart.ID, input.ProductID, input.Quantity)
		if err != nil {
			respondCartErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PATCH /carts/:id/items/:item_id
func UpdateCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadOwnedCart(db, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondCartErr(c, err)
			return
		}

		itemID, ok := parseUintParam(c, "item_id")
		if !ok {
			return
		}

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := UpdateItemQuantity(db, cart.ID, itemID, input.Quantity)
		if err != nil {
			respondCartErr(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /carts/:id/items/:item_id
func DeleteCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadOwnedCart(db, c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
		if err != nil {
			respondCartErr(c, err)
			return
		}

		itemID, ok := parseUintParam(c, "item_id")
		if !ok {
			return
		}

		result := db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

func respondCartErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
	case errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
