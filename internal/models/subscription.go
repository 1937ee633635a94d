package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSubscription links a user to the plan they currently pay for. At most
// one row exists per user; cancellation flips is_active instead of deleting
// so billing history survives.
type UserSubscription struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PlanID               uuid.UUID        `gorm:"type:uuid;not null" json:"plan_id"`
	StartDate            time.Time        `gorm:"not null" json:"start_date"`
	EndDate              time.Time        `gorm:"not null" json:"end_date"`
	IsActive             bool             `gorm:"default:false" json:"is_active"`
	LastPaymentDate      *time.Time       `json:"last_payment_date,omitempty"`
	StripeSubscriptionID string           `gorm:"index;size:255" json:"stripe_subscription_id"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	User                 User             `gorm:"foreignKey:UserID" json:"-"`
	Plan                 SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// BeforeCreate ensures UUID is set before creation
func (s *UserSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsValid reports whether the subscription grants entitlement at the given
// instant.
func (s *UserSubscription) IsValid(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}
