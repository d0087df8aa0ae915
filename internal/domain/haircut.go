package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Haircut is a barbershop service in the catalog. ChoosenCount tracks how
// many times this particular style was booked and drives catalog ordering.
type Haircut struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string         `gorm:"size:128;index" json:"name"`
	Description  string         `gorm:"size:500" json:"description"`
	ImageURL     string         `gorm:"size:512" json:"image_url"`
	ImageKey     string         `gorm:"size:512" json:"-"`
	ChoosenCount int            `gorm:"not null;default:0" json:"choosen_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (h *Haircut) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
