package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chantierplus/internal/models"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(ctx context.Context, u *models.UserProfile) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Owners — все OWNER компании в порядке создания.
func (s *UserStore) Owners(ctx context.Context, companyID uuid.UUID) ([]models.UserProfile, error) {
	var out []models.UserProfile
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND role = ?", companyID, models.RoleOwner).
		Order("created_at asc, email asc").
		Find(&out).Error
	return out, err
}
