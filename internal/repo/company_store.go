package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chantierplus/internal/models"
)

type CompanyStore struct{ db *gorm.DB }

func NewCompanyStore(db *gorm.DB) *CompanyStore { return &CompanyStore{db: db} }

func (s *CompanyStore) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *CompanyStore) NameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Company{}).Where("name = ?", name).Count(&n).Error
	return n > 0, err
}

// Register создаёт компанию и её первого владельца одной транзакцией.
func (s *CompanyStore) Register(ctx context.Context, c *models.Company, owner *models.UserProfile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		owner.CompanyID = c.ID
		return tx.Create(owner).Error
	})
}
