package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity categories and impact levels.
const (
	CategoryEnergy    = "energy"
	CategoryWater     = "water"
	CategoryWaste     = "waste"
	CategoryTransport = "transport"
	CategoryRecycling = "recycling"

	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// ActivityCategories lists every valid activity/goal category.
var ActivityCategories = []string{
	CategoryEnergy, CategoryWater, CategoryWaste, CategoryTransport, CategoryRecycling,
}

// ValidCategory reports whether c is a known activity category.
func ValidCategory(c string) bool {
	for _, v := range ActivityCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidImpactLevel reports whether l is a known impact level.
func ValidImpactLevel(l string) bool {
	return l == ImpactLow || l == ImpactMedium || l == ImpactHigh
}

// Activity is a single recorded sustainability action. Once verified it is
// frozen for its owner; only a verifier may touch it afterwards.
type Activity struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_activities_user_category_date" json:"user_id"`
	Category    string     `gorm:"size:20;not null;index:idx_activities_user_category_date" json:"category"`
	Description string     `gorm:"type:text" json:"description"`
	Value       float64    `gorm:"not null;check:value >= 0" json:"value"`
	Unit        string     `gorm:"size:20;not null" json:"unit"`
	Date        time.Time  `gorm:"type:date;not null;index:idx_activities_user_category_date" json:"date"`
	Verified    bool       `gorm:"default:false;index:idx_activities_verified_impact" json:"verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	VerifiedBy  *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	ImpactLevel string     `gorm:"size:10;default:'medium';index:idx_activities_verified_impact" json:"impact_level"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	Location    string     `gorm:"size:255" json:"location,omitempty"`
	Tags        string     `gorm:"size:255" json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        User       `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
