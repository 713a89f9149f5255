package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TriggerCreate = "create"
	TriggerResend = "resend"
)

// AvenantNotification — журнал одного прогона рассылки по avenant.
type AvenantNotification struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AvenantID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"avenant_id"`
	Trigger    string         `gorm:"size:16;not null" json:"trigger"` // create|resend
	Recipients datatypes.JSON `json:"recipients"`
	Outcomes   datatypes.JSON `json:"outcomes"`
	Delivered  int            `json:"delivered"`
	Failed     int            `json:"failed"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (n *AvenantNotification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

func All() []any {
	return []any{
		&Company{},
		&UserProfile{},
		&Chantier{},
		&Avenant{},
		&AvenantNotification{},
	}
}
