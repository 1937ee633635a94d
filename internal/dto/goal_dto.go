package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGoalRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	TargetValue       float64    `json:"target_value"`
	CurrentValue      float64    `json:"current_value"`
	Unit              string     `json:"unit"`
	Deadline          string     `json:"deadline"` // YYYY-MM-DD
	Priority          string     `json:"priority"`
	ReminderFrequency int        `json:"reminder_frequency"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	Notes             string     `json:"notes"`
}

type UpdateGoalProgressRequest struct {
	CurrentValue float64 `json:"current_value"`
}

type TransitionGoalRequest struct {
	Status string `json:"status"`
}

type GoalResponse struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	AssignedTo         *uuid.UUID `json:"assigned_to,omitempty"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	TargetValue        float64    `json:"target_value"`
	CurrentValue       float64    `json:"current_value"`
	Unit               string     `json:"unit"`
	Deadline           string     `json:"deadline"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	ProgressPercentage float64    `json:"progress_percentage"`
	ReminderFrequency  int        `json:"reminder_frequency"`
	LastReminderSent   *time.Time `json:"last_reminder_sent,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type GoalsListResponse struct {
	Goals      []GoalResponse `json:"goals"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
