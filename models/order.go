package models

import "time"

type OrderStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending     OrderStatus = "pending"       // Order placed, awaiting payment
	OrderStatusReadyToShip OrderStatus = "ready_to_ship" // Paid, packed and ready for dispatch
	OrderStatusShipped     OrderStatus = "shipped"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "delivered"     // Customer received the item
	OrderStatusReturned    OrderStatus = "returned"      // Customer returned the item
	OrderStatusCancelled   OrderStatus = "cancelled"     // Cancelled before shipping
)

// AllOrderStatuses is the full enumerated set accepted by the
// administrative override.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusReadyToShip,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusReturned,
	OrderStatusCancelled,
}

// Cancellable reports whether the order may still be cancelled by its
// owner. Anything at or past shipping is off-limits.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusReadyToShip
}

// Valid reports membership in the enumerated status set.
func (s OrderStatus) Valid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is an immutable snapshot of a cart at purchase time. TotalPrice is
// fixed at creation and never recomputed from live products.
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     string      `gorm:"index;not null" json:"user_id"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice float64     `gorm:"not null" json:"total_price"`
	Status     OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderItem freezes the unit price at purchase time; later product price
// edits must not change it.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"index;not null" json:"order_id"`
	ProductID uint     `gorm:"not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	Price     float64  `gorm:"not null" json:"price"`
}
