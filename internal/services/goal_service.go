package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound           = errors.New("goal not found")
	ErrInvalidTransition      = errors.New("requested status is not a valid transition target")
	ErrGoalTerminal           = errors.New("goal is in a terminal status")
	ErrProgressExceedsTarget  = errors.New("current value cannot exceed target value")
	ErrNegativeValue          = errors.New("value must be non-negative")
	ErrInvalidGoalCategory    = errors.New("unknown goal category")
	ErrInvalidGoalPriority    = errors.New("unknown goal priority")
	ErrInvalidDeadline        = errors.New("deadline must be a valid date (YYYY-MM-DD)")
	ErrTitleRequired          = errors.New("title is required")
	ErrUnitRequired           = errors.New("unit is required")
	ErrDelegateCannotFinalize = errors.New("only the goal owner can change its status")
)

// transitionTargets are the statuses a caller may explicitly request. Overdue
// is derived from the deadline and pending only ever appears at creation.
var transitionTargets = map[string]bool{
	models.GoalStatusInProgress: true,
	models.GoalStatusCompleted:  true,
	models.GoalStatusCancelled:  true,
}

// GoalService owns goal lifecycle and progress bookkeeping. The stored status
// is the last-known one, so every path that surfaces a goal reconciles the
// derived overdue status first.
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

func (s *GoalService) Create(userID uuid.UUID, req *dto.CreateGoalRequest) (*dto.GoalResponse, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Unit == "" {
		return nil, ErrUnitRequired
	}
	if req.TargetValue < 0 || req.CurrentValue < 0 {
		return nil, ErrNegativeValue
	}
	if req.CurrentValue > req.TargetValue {
		return nil, ErrProgressExceedsTarget
	}

	category := req.Category
	if category == "" {
		category = models.CategoryEnergy
	}
	if !models.ValidCategory(category) {
		return nil, ErrInvalidGoalCategory
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidGoalPriority
	}

	deadline, err := time.ParseInLocation("2006-01-02", req.Deadline, time.UTC)
	if err != nil {
		return nil, ErrInvalidDeadline
	}

	reminderFrequency := req.ReminderFrequency
	if reminderFrequency <= 0 {
		reminderFrequency = 7
	}

	goal := models.Goal{
		ID:                uuid.New(),
		UserID:            userID,
		AssignedTo:        req.AssignedTo,
		Title:             req.Title,
		Description:       req.Description,
		Category:          category,
		TargetValue:       req.TargetValue,
		CurrentValue:      req.CurrentValue,
		Unit:              req.Unit,
		Deadline:          deadline,
		Status:            models.GoalStatusPending,
		Priority:          priority,
		ReminderFrequency: reminderFrequency,
		Notes:             req.Notes,
	}

	if err := s.db.Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return mapGoalToResponse(&goal), nil
}

// Get returns a goal visible to the caller (owner or delegate), reconciling
// the overdue status before surfacing it.
func (s *GoalService) Get(userID, goalID uuid.UUID) (*dto.GoalResponse, error) {
	if err := s.ReconcileOverdue(goalID, time.Now().UTC()); err != nil {
		return nil, err
	}

	var goal models.Goal
	err := s.db.Where("id = ? AND (user_id = ? OR assigned_to = ?)", goalID, userID, userID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return mapGoalToResponse(&goal), nil
}

// List returns the caller's goals, optionally filtered by status, newest
// deadline last. All listed goals have overdue reconciled first.
func (s *GoalService) List(userID uuid.UUID, status string, page, limit int) (*dto.GoalsListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	if err := s.reconcileOverdueForUser(userID, time.Now().UTC()); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Goal{}).Where("user_id = ? OR assigned_to = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var goals []models.Goal
	if err := query.Order("deadline ASC").Limit(limit).Offset(offset).Find(&goals).Error; err != nil {
		return nil, err
	}

	resp := &dto.GoalsListResponse{
		Goals:      make([]dto.GoalResponse, len(goals)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	for i := range goals {
		resp.Goals[i] = *mapGoalToResponse(&goals[i])
	}
	return resp, nil
}

// UpdateProgress sets the goal's current value and recomputes the derived
// overdue status. Owner and delegate may both report progress.
func (s *GoalService) UpdateProgress(userID, goalID uuid.UUID, newValue float64) (*dto.GoalResponse, error) {
	if newValue < 0 {
		return nil, ErrNegativeValue
	}

	result := s.db.Model(&models.Goal{}).
		Where("id = ? AND (user_id = ? OR assigned_to = ?)", goalID, userID, userID).
		Update("current_value", newValue)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrGoalNotFound
	}

	return s.Get(userID, goalID)
}

// TransitionStatus applies an explicit lifecycle change requested by the
// owner. Only in_progress, completed and cancelled are requestable, and a
// goal never leaves completed or cancelled. The terminal guard lives in the
// UPDATE's WHERE clause so a concurrent terminal write always wins.
func (s *GoalService) TransitionStatus(userID, goalID uuid.UUID, requested string) (*dto.GoalResponse, error) {
	if !transitionTargets[requested] {
		return nil, ErrInvalidTransition
	}

	var goal models.Goal
	err := s.db.Where("id = ?", goalID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		if goal.AssignedTo != nil && *goal.AssignedTo == userID {
			return nil, ErrDelegateCannotFinalize
		}
		return nil, ErrGoalNotFound
	}
	if goal.IsTerminal() {
		return nil, ErrGoalTerminal
	}

	result := s.db.Model(&models.Goal{}).
		Where("id = ? AND status NOT IN ?", goalID, models.GoalTerminalStatuses).
		Update("status", requested)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a race against a terminal transition.
		return nil, ErrGoalTerminal
	}

	return s.Get(userID, goalID)
}

// ReconcileOverdue marks the goal overdue when its deadline has passed and it
// is still open. Idempotent: re-applying is a no-op, and terminal statuses
// are never touched because the guard is part of the UPDATE itself.
func (s *GoalService) ReconcileOverdue(goalID uuid.UUID, today time.Time) error {
	return s.db.Model(&models.Goal{}).
		Where("id = ? AND deadline < ? AND status IN ?",
			goalID, startOfDay(today), []string{models.GoalStatusPending, models.GoalStatusInProgress}).
		Update("status", models.GoalStatusOverdue).Error
}

func (s *GoalService) reconcileOverdueForUser(userID uuid.UUID, today time.Time) error {
	return s.db.Model(&models.Goal{}).
		Where("(user_id = ? OR assigned_to = ?) AND deadline < ? AND status IN ?",
			userID, userID, startOfDay(today), []string{models.GoalStatusPending, models.GoalStatusInProgress}).
		Update("status", models.GoalStatusOverdue).Error
}

// RemindersDue returns open goals whose reminder window has elapsed since the
// last reminder (or that never received one).
func (s *GoalService) RemindersDue(userID uuid.UUID, now time.Time) ([]dto.GoalResponse, error) {
	if err := s.reconcileOverdueForUser(userID, now); err != nil {
		return nil, err
	}

	var goals []models.Goal
	err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]string{models.GoalStatusPending, models.GoalStatusInProgress, models.GoalStatusOverdue}).
		Order("deadline ASC").Find(&goals).Error
	if err != nil {
		return nil, err
	}

	var due []dto.GoalResponse
	for i := range goals {
		g := &goals[i]
		if g.LastReminderSent == nil ||
			now.Sub(*g.LastReminderSent) >= time.Duration(g.ReminderFrequency)*24*time.Hour {
			due = append(due, *mapGoalToResponse(g))
		}
	}
	return due, nil
}

// MarkReminderSent stamps last_reminder_sent after a reminder is delivered.
func (s *GoalService) MarkReminderSent(goalID uuid.UUID, at time.Time) error {
	return s.db.Model(&models.Goal{}).Where("id = ?", goalID).
		Update("last_reminder_sent", at).Error
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mapGoalToResponse(g *models.Goal) *dto.GoalResponse {
	return &dto.GoalResponse{
		ID:                 g.ID,
		UserID:             g.UserID,
		AssignedTo:         g.AssignedTo,
		Title:              g.Title,
		Description:        g.Description,
		Category:           g.Category,
		TargetValue:        g.TargetValue,
		CurrentValue:       g.CurrentValue,
		Unit:               g.Unit,
		Deadline:           g.Deadline.Format("2006-01-02"),
		Status:             g.Status,
		Priority:           g.Priority,
		ProgressPercentage: g.ProgressPercentage(),
		ReminderFrequency:  g.ReminderFrequency,
		LastReminderSent:   g.LastReminderSent,
		Notes:              g.Notes,
		CreatedAt:          g.CreatedAt,
	}
}
