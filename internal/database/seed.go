package database

import (
	"errors"
	"log/slog"

	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var defaultPlans = []models.SubscriptionPlan{
	{
		Name:         "Community",
		Price:        0.00,
		BillingCycle: models.BillingMonthly,
		Features: `- Basic activity tracking
- Simple goal setting
- Community support
- Basic reporting`,
	},
	{
		Name:         "Professional",
		Price:        29.00,
		BillingCycle: models.BillingMonthly,
		Features: `- Advanced activity tracking
- Detailed goal analytics
- Priority support
- Custom reporting
- Team collaboration`,
	},
	{
		Name:         "Enterprise",
		Price:        99.00,
		BillingCycle: models.BillingMonthly,
		Features: `- All Professional features
- Enterprise-grade support
- Custom integrations
- Advanced analytics
- Dedicated account manager
- Custom branding`,
	},
}

// SeedPlans inserts the plan catalog, create-if-absent by name. Re-running
// never duplicates a plan or overwrites an existing plan's price or features.
func SeedPlans(db *gorm.DB) error {
	seeded := 0

	for _, plan := range defaultPlans {
		var existing models.SubscriptionPlan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		plan.ID = uuid.New()
		plan.IsActive = true
		if err := db.Create(&plan).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("seeded subscription plans", "new", seeded, "total", len(defaultPlans))
	}
	return nil
}
