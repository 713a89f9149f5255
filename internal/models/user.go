package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool { return r == RoleOwner || r == RoleEmployee }

// UserProfile — сотрудник ровно одной компании.
type UserProfile struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	Company         *Company   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Email           string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash    *string    `gorm:"type:text" json:"-"` // nil у приглашённых до активации
	Role            Role       `gorm:"size:16;not null;default:EMPLOYEE" json:"role"`
	IsActive        bool       `gorm:"not null;default:false" json:"is_active"`
	InvitationToken *string    `gorm:"type:text;uniqueIndex" json:"-"`
	ResetToken      *string    `gorm:"type:text;uniqueIndex" json:"-"`
	TokenExpiresAt  *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *UserProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u *UserProfile) IsOwner() bool { return u.Role == RoleOwner }
