package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Billing cycles.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// SubscriptionPlan is a catalog entry. Plans are seeded create-if-absent by
// name and treated as append-only reference data.
type SubscriptionPlan struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Price        float64   `gorm:"not null" json:"price"`
	BillingCycle string    `gorm:"size:10;default:'monthly'" json:"billing_cycle"`
	Features     string    `gorm:"type:text" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate ensures UUID is set before creation
func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FeatureList splits the newline-delimited features text into clean entries,
// stripping bullet markers and surrounding whitespace.
func (p *SubscriptionPlan) FeatureList() []string {
	var features []string
	for _, line := range strings.Split(p.Features, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			features = append(features, line)
		}
	}
	return features
}
