package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	ExpeditionStatusPending   = "pending"
	ExpeditionStatusShipped   = "shipped"
	ExpeditionStatusDelivered = "delivered"

	DefaultExpeditionService = "JNE"
	DefaultPaymentMethod     = "cod"
)

// ProductTransaction is an immutable order snapshot produced by checkout.
// TotalPrice is the sum of item subtotals at order time; later catalog price
// edits never change it.
type ProductTransaction struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNo           int64     `gorm:"uniqueIndex" json:"order_no,string"`
	UserID            string    `gorm:"type:varchar(36);index" json:"user_id"`
	TotalPrice        float64   `gorm:"not null" json:"total_price"`
	ExpeditionService string    `gorm:"size:100" json:"expedition_service"`
	ExpeditionStatus  string    `gorm:"size:50;default:pending" json:"expedition_status"`
	PaymentMethod     string    `gorm:"size:50;default:cod" json:"payment_method"`
	PaymentStatus     string    `gorm:"size:50;default:unpaid" json:"payment_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	User  *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
}

func (t *ProductTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TransactionItem records one order line with the unit price frozen at
// purchase time.
type TransactionItem struct {
	ID              string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	TransactionID   string  `gorm:"type:varchar(36);index" json:"transaction_id"`
	ProductID       string  `gorm:"type:varchar(36);index" json:"product_id"`
	Quantity        int     `gorm:"not null" json:"quantity"`
	PriceAtPurchase float64 `gorm:"not null" json:"price_at_purchase"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (i *TransactionItem) Subtotal() float64 {
	return i.PriceAtPurchase * float64(i.Quantity)
}
