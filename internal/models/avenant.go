package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PricingMode string

const (
	ModeForfait PricingMode = "FORFAIT" // фиксированная цена
	ModeRegie   PricingMode = "REGIE"   // часы × ставка
)

func (m PricingMode) Valid() bool { return m == ModeForfait || m == ModeRegie }

type AvenantStatus string

const (
	StatusDraft  AvenantStatus = "DRAFT"
	StatusSigned AvenantStatus = "SIGNED"
	StatusSent   AvenantStatus = "SENT" // объявлен, но ни один путь в него не переводит
)

// Avenant — дополнительное соглашение к chantier. После создания не изменяется.
type Avenant struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ChantierID   uuid.UUID           `gorm:"type:uuid;index;not null" json:"chantier_id"`
	Chantier     *Chantier           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID     *uuid.UUID          `gorm:"type:uuid;index" json:"author_id,omitempty"` // nil у старых записей
	Description  string              `gorm:"type:text;not null" json:"description"`
	Type         PricingMode         `gorm:"size:16;not null" json:"type"`
	Price        decimal.NullDecimal `gorm:"type:numeric" json:"price"`
	Hours        decimal.NullDecimal `gorm:"type:numeric" json:"hours"`
	HourlyRate   decimal.NullDecimal `gorm:"type:numeric" json:"hourly_rate"`
	TotalHT      decimal.Decimal     `gorm:"type:numeric;not null" json:"total_ht"`
	PhotoURL     *string             `gorm:"type:text" json:"photo_url"`
	SignatureURL *string             `gorm:"type:text" json:"signature_url"`
	Status       AvenantStatus       `gorm:"size:16;not null;default:DRAFT" json:"status"`
	SignedAt     *time.Time          `json:"signed_at"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (a *Avenant) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AvenantParams — всё, из чего собирается сохраняемая запись.
// Производные поля (итог, статус, время подписи, ссылки на артефакты) передаются явно.
type AvenantParams struct {
	ChantierID   uuid.UUID
	AuthorID     uuid.UUID
	Description  string
	Type         PricingMode
	Price        decimal.NullDecimal
	Hours        decimal.NullDecimal
	HourlyRate   decimal.NullDecimal
	TotalHT      decimal.Decimal
	Status       AvenantStatus
	SignedAt     time.Time
	PhotoURL     *string
	SignatureURL *string
}

// NewAvenant собирает запись; поля противоположного режима цены обнуляются.
func NewAvenant(p AvenantParams) *Avenant {
	a := &Avenant{
		ID:           uuid.New(),
		ChantierID:   p.ChantierID,
		Description:  p.Description,
		Type:         p.Type,
		TotalHT:      p.TotalHT,
		PhotoURL:     p.PhotoURL,
		SignatureURL: p.SignatureURL,
		Status:       p.Status,
		CreatedAt:    p.SignedAt,
	}
	if p.AuthorID != uuid.Nil {
		author := p.AuthorID
		a.AuthorID = &author
	}
	if !p.SignedAt.IsZero() {
		signed := p.SignedAt
		a.SignedAt = &signed
	}
	switch p.Type {
	case ModeForfait:
		a.Price = p.Price
	case ModeRegie:
		a.Hours = p.Hours
		a.HourlyRate = p.HourlyRate
	}
	return a
}
