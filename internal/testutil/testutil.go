// Package testutil — общие фикстуры для тестов: sqlite в памяти и засеянная компания.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chantierplus/internal/db"
	"chantierplus/internal/models"
)

// NewDB — отдельная sqlite-база в памяти на каждый тест.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// Fixture — компания с двумя владельцами, сотрудником и объектом.
type Fixture struct {
	Company  models.Company
	Owners   []models.UserProfile
	Employee models.UserProfile
	Chantier models.Chantier
}

func Seed(t testing.TB, gdb *gorm.DB, name string) Fixture {
	t.Helper()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	f := Fixture{Company: models.Company{Name: name, CreatedAt: base}}
	require.NoError(t, gdb.Create(&f.Company).Error)

	for i, email := range []string{"owner1@" + name + ".fr", "owner2@" + name + ".fr"} {
		u := models.UserProfile{
			CompanyID: f.Company.ID,
			Email:     email,
			Role:      models.RoleOwner,
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i+1) * time.Minute),
		}
		require.NoError(t, gdb.Create(&u).Error)
		f.Owners = append(f.Owners, u)
	}

	f.Employee = models.UserProfile{
		CompanyID: f.Company.ID,
		Email:     "employee@" + name + ".fr",
		Role:      models.RoleEmployee,
		IsActive:  true,
		CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, gdb.Create(&f.Employee).Error)

	f.Chantier = models.Chantier{
		CompanyID:    f.Company.ID,
		Name:         "Villa " + name,
		Address:      "12 rue de la Paix, Paris",
		ContactEmail: "client@" + name + ".fr",
		CreatedAt:    base,
	}
	require.NoError(t, gdb.Create(&f.Chantier).Error)
	return f
}
