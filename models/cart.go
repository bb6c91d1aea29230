package models

import "time"

// Cart is keyed by an opaque token rather than a serial id so cart URLs
// cannot be guessed. UserID is unique: one open cart per user.
type Cart struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem rows are unique per (cart, product); adding the same product
// again increments Quantity instead of inserting a second row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    string    `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Subtotal is priced live from the product, unlike frozen order items.
func (ci CartItem) Subtotal() float64 {
	if ci.Product == nil {
		return 0
	}
	return ci.Product.Price * float64(ci.Quantity)
}

// Total sums live subtotals across the cart.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}
