package services

import (
	"fmt"
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database to avoid cross-test
// interference.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Activity{},
		&models.Goal{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "x",
		Role:     "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestPlan(t *testing.T, db *gorm.DB, name string, price float64, active bool) *models.SubscriptionPlan {
	t.Helper()
	plan := models.SubscriptionPlan{
		ID:           uuid.New(),
		Name:         name,
		Price:        price,
		BillingCycle: models.BillingMonthly,
		Features:     "- Feature one\n- Feature two",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&plan).Error)
	if !active {
		// Updated separately: a zero-value bool would be swallowed by the
		// column default on insert.
		require.NoError(t, db.Model(&plan).Update("is_active", false).Error)
		plan.IsActive = false
	}
	return &plan
}
