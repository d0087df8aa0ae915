package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one active cart line. A user has at most one row per product;
// adding the same product again raises the quantity instead.
type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index:idx_cart_user_product,unique" json:"user_id"`
	ProductID string    `gorm:"type:varchar(36);index:idx_cart_user_product,unique" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Subtotal is the line total at the product's current price. Zero when the
// product relation was not loaded or the product is gone.
func (c *CartItem) Subtotal() float64 {
	if c.Product == nil {
		return 0
	}
	return c.Product.Price * float64(c.Quantity)
}
