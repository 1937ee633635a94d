package services

import (
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DashboardService assembles the per-user overview: recent activity, open
// goals and current-month totals per category.
type DashboardService struct {
	db    *gorm.DB
	goals *GoalService
}

func NewDashboardService(db *gorm.DB, goals *GoalService) *DashboardService {
	return &DashboardService{db: db, goals: goals}
}

func (s *DashboardService) Summary(userID uuid.UUID) (*dto.DashboardResponse, error) {
	now := time.Now().UTC()

	var recent []models.Activity
	err := s.db.Where("user_id = ?", userID).
		Order("date DESC").Limit(5).Find(&recent).Error
	if err != nil {
		return nil, err
	}

	// Overdue is derived; reconcile before surfacing goal statuses.
	if err := s.goals.reconcileOverdueForUser(userID, now); err != nil {
		return nil, err
	}

	var activeGoals []models.Goal
	err = s.db.Where("user_id = ? AND status IN ?", userID,
		[]string{models.GoalStatusPending, models.GoalStatusInProgress}).
		Order("deadline ASC").Find(&activeGoals).Error
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var totals []dto.CategoryTotal
	err = s.db.Model(&models.Activity{}).
		Select("category, SUM(value) AS total").
		Where("user_id = ? AND date >= ?", userID, monthStart).
		Group("category").
		Order("category ASC").
		Find(&totals).Error
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		RecentActivities: make([]dto.ActivityResponse, len(recent)),
		ActiveGoals:      make([]dto.GoalResponse, len(activeGoals)),
		MonthlyTotals:    totals,
	}
	for i := range recent {
		resp.RecentActivities[i] = *mapActivityToResponse(&recent[i])
	}
	for i := range activeGoals {
		resp.ActiveGoals[i] = *mapGoalToResponse(&activeGoals[i])
	}
	return resp, nil
}
