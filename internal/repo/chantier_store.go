package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chantierplus/internal/models"
)

type ChantierStore struct{ db *gorm.DB }

func NewChantierStore(db *gorm.DB) *ChantierStore { return &ChantierStore{db: db} }

func (s *ChantierStore) Create(ctx context.Context, c *models.Chantier) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *ChantierStore) Get(ctx context.Context, id uuid.UUID) (*models.Chantier, error) {
	var c models.Chantier
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *ChantierStore) ListByCompany(ctx context.Context, companyID uuid.UUID, skip, limit int) ([]models.Chantier, error) {
	var out []models.Chantier
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	return out, err
}
