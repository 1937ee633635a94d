package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal statuses. Overdue is derived from the deadline, never set directly by
// callers; completed and cancelled are terminal.
const (
	GoalStatusPending    = "pending"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusCancelled  = "cancelled"
	GoalStatusOverdue    = "overdue"
)

// Goal priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// GoalTerminalStatuses are statuses a goal never leaves.
var GoalTerminalStatuses = []string{GoalStatusCompleted, GoalStatusCancelled}

// ValidPriority reports whether p is a known goal priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Goal tracks a measurable sustainability target with a deadline.
type Goal struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_goals_user_status_deadline" json:"user_id"`
	AssignedTo        *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	Title             string     `gorm:"size:200;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	Category          string     `gorm:"size:20;default:'energy';index:idx_goals_priority_category" json:"category"`
	TargetValue       float64    `gorm:"not null;check:target_value >= 0" json:"target_value"`
	CurrentValue      float64    `gorm:"not null;default:0;check:current_value >= 0" json:"current_value"`
	Unit              string     `gorm:"size:20;not null" json:"unit"`
	Deadline          time.Time  `gorm:"type:date;not null;index:idx_goals_user_status_deadline" json:"deadline"`
	Status            string     `gorm:"size:20;default:'pending';index:idx_goals_user_status_deadline" json:"status"`
	Priority          string     `gorm:"size:10;default:'medium';index:idx_goals_priority_category" json:"priority"`
	ReminderFrequency int        `gorm:"default:7" json:"reminder_frequency"`
	LastReminderSent  *time.Time `json:"last_reminder_sent,omitempty"`
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	User              User       `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// ProgressPercentage returns completion as a percentage clamped to [0, 100]
// and rounded to one decimal place. A zero target never divides; it reads 0.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetValue == 0 {
		return 0.0
	}
	p := g.CurrentValue / g.TargetValue * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

// IsTerminal reports whether the goal is in a final status.
func (g *Goal) IsTerminal() bool {
	return g.Status == GoalStatusCompleted || g.Status == GoalStatusCancelled
}

// IsOverdue reports whether the deadline has passed while the goal is still
// open. The stored status may lag; callers reconcile it on read/write paths.
func (g *Goal) IsOverdue(today time.Time) bool {
	return g.Deadline.Before(truncateToDay(today)) && !g.IsTerminal()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
