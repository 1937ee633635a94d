package dto

import (
	"time"

	"github.com/google/uuid"
)

type PlanResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	BillingCycle string    `json:"billing_cycle"`
	Features     []string  `json:"features"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type SubscriptionResponse struct {
	ID              uuid.UUID    `json:"id"`
	Plan            PlanResponse `json:"plan"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	IsActive        bool         `json:"is_active"`
	IsValid         bool         `json:"is_valid"`
	LastPaymentDate *time.Time   `json:"last_payment_date,omitempty"`
}

type DashboardResponse struct {
	RecentActivities []ActivityResponse `json:"recent_activities"`
	ActiveGoals      []GoalResponse     `json:"active_goals"`
	MonthlyTotals    []CategoryTotal    `json:"monthly_totals"`
}
