package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusDone      = "done"
	ReservationStatusCancelled = "cancelled"
)

// HaircutTransaction is a booking for a haircut service, optionally with a
// hair wash add-on.
type HaircutTransaction struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID            string    `gorm:"type:varchar(36);index" json:"user_id"`
	HaircutID         string    `gorm:"type:varchar(36);index" json:"haircut_id"`
	Hairwash          bool      `gorm:"default:false" json:"hairwash"`
	TotalPrice        float64   `gorm:"not null" json:"total_price"`
	ReservationTime   time.Time `gorm:"not null" json:"reservation_time"`
	ReservationStatus string    `gorm:"size:50;default:pending" json:"reservation_status"`
	PaymentMethod     string    `gorm:"size:50;default:cash" json:"payment_method"`
	PaymentStatus     string    `gorm:"size:50;default:unpaid" json:"payment_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Haircut *Haircut `gorm:"foreignKey:HaircutID" json:"haircut,omitempty"`
}

func (t *HaircutTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
