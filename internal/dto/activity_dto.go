package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateActivityRequest struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Date        string  `json:"date"` // YYYY-MM-DD, defaults to today
	ImpactLevel string  `json:"impact_level"`
	Notes       string  `json:"notes"`
	Location    string  `json:"location"`
	Tags        string  `json:"tags"`
}

type UpdateActivityRequest struct {
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Value       *float64 `json:"value"`
	Unit        *string  `json:"unit"`
	Date        *string  `json:"date"`
	ImpactLevel *string  `json:"impact_level"`
	Notes       *string  `json:"notes"`
	Location    *string  `json:"location"`
	Tags        *string  `json:"tags"`
}

type ActivityResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Value       float64    `json:"value"`
	Unit        string     `json:"unit"`
	Date        string     `json:"date"`
	Verified    bool       `json:"verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	VerifiedBy  *uuid.UUID `json:"verified_by,omitempty"`
	ImpactLevel string     `json:"impact_level"`
	Notes       string     `json:"notes,omitempty"`
	Location    string     `json:"location,omitempty"`
	Tags        string     `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ActivitiesListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
