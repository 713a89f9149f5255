package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chantier — объект (стройплощадка) компании; к нему привязываются avenants.
type Chantier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Company      *Company  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	ContactEmail string    `gorm:"type:text;not null" json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Chantier) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
