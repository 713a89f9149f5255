package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chantierplus/internal/models"
)

type AvenantStore struct{ db *gorm.DB }

func NewAvenantStore(db *gorm.DB) *AvenantStore { return &AvenantStore{db: db} }

func (s *AvenantStore) Create(ctx context.Context, a *models.Avenant) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *AvenantStore) Get(ctx context.Context, id uuid.UUID) (*models.Avenant, error) {
	var a models.Avenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListByChantier — avenants объекта, новые первыми.
func (s *AvenantStore) ListByChantier(ctx context.Context, chantierID uuid.UUID) ([]models.Avenant, error) {
	var out []models.Avenant
	err := s.db.WithContext(ctx).
		Where("chantier_id = ?", chantierID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (s *AvenantStore) RecordNotification(ctx context.Context, n *models.AvenantNotification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *AvenantStore) Notifications(ctx context.Context, avenantID uuid.UUID) ([]models.AvenantNotification, error) {
	var out []models.AvenantNotification
	err := s.db.WithContext(ctx).
		Where("avenant_id = ?", avenantID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
