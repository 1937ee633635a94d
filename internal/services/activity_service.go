package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrActivityVerified  = errors.New("activity is verified and can no longer be edited")
	ErrInvalidCategory   = errors.New("unknown activity category")
	ErrInvalidImpact     = errors.New("unknown impact level")
	ErrInvalidDate       = errors.New("date must be a valid date (YYYY-MM-DD)")
	ErrDescriptionNeeded = errors.New("description is required")
)

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) Create(userID uuid.UUID, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	if !models.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Value < 0 {
		return nil, ErrNegativeValue
	}
	if req.Unit == "" {
		return nil, ErrUnitRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionNeeded
	}

	impact := req.ImpactLevel
	if impact == "" {
		impact = models.ImpactMedium
	}
	if !models.ValidImpactLevel(impact) {
		return nil, ErrInvalidImpact
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		var err error
		date, err = time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	activity := models.Activity{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    req.Category,
		Description: req.Description,
		Value:       req.Value,
		Unit:        req.Unit,
		Date:        date,
		ImpactLevel: impact,
		Notes:       req.Notes,
		Location:    req.Location,
		Tags:        req.Tags,
	}

	if err := s.db.Create(&activity).Error; err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return mapActivityToResponse(&activity), nil
}

func (s *ActivityService) Get(userID, activityID uuid.UUID) (*dto.ActivityResponse, error) {
	var activity models.Activity
	err := s.db.Where("id = ? AND user_id = ?", activityID, userID).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return mapActivityToResponse(&activity), nil
}

func (s *ActivityService) List(userID uuid.UUID, category string, page, limit int) (*dto.ActivitiesListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := s.db.Model(&models.Activity{}).Where("user_id = ?", userID)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var activities []models.Activity
	if err := query.Order("date DESC").Limit(limit).Offset(offset).Find(&activities).Error; err != nil {
		return nil, err
	}

	resp := &dto.ActivitiesListResponse{
		Activities: make([]dto.ActivityResponse, len(activities)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	for i := range activities {
		resp.Activities[i] = *mapActivityToResponse(&activities[i])
	}
	return resp, nil
}

// Update edits an activity's fields. A verified activity is frozen: only an
// admin caller may still modify it.
func (s *ActivityService) Update(userID, activityID uuid.UUID, isAdmin bool, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	var activity models.Activity
	err := s.db.Where("id = ? AND user_id = ?", activityID, userID).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if !isAdmin {
				return nil, ErrActivityNotFound
			}
			// Admins may edit any user's activity.
			if err := s.db.First(&activity, "id = ?", activityID).Error; err != nil {
				return nil, ErrActivityNotFound
			}
		} else {
			return nil, err
		}
	}

	if activity.Verified && !isAdmin {
		return nil, ErrActivityVerified
	}

	updates := map[string]interface{}{}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, ErrDescriptionNeeded
		}
		updates["description"] = *req.Description
	}
	if req.Value != nil {
		if *req.Value < 0 {
			return nil, ErrNegativeValue
		}
		updates["value"] = *req.Value
	}
	if req.Unit != nil {
		if *req.Unit == "" {
			return nil, ErrUnitRequired
		}
		updates["unit"] = *req.Unit
	}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, time.UTC)
		if err != nil {
			return nil, ErrInvalidDate
		}
		updates["date"] = date
	}
	if req.ImpactLevel != nil {
		if !models.ValidImpactLevel(*req.ImpactLevel) {
			return nil, ErrInvalidImpact
		}
		updates["impact_level"] = *req.ImpactLevel
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if len(updates) > 0 {
		if err := s.db.Model(&activity).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.First(&activity, "id = ?", activity.ID).Error; err != nil {
		return nil, err
	}
	return mapActivityToResponse(&activity), nil
}

// Verify marks an activity as verified by the given verifier. Re-verifying
// is a no-op that keeps the original verifier and timestamp.
func (s *ActivityService) Verify(verifierID, activityID uuid.UUID) (*dto.ActivityResponse, error) {
	var activity models.Activity
	if err := s.db.First(&activity, "id = ?", activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	if !activity.Verified {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"verified":    true,
			"verified_at": now,
			"verified_by": verifierID,
		}
		if err := s.db.Model(&activity).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := s.db.First(&activity, "id = ?", activity.ID).Error; err != nil {
			return nil, err
		}
	}

	return mapActivityToResponse(&activity), nil
}

// ListUnverified returns activities awaiting verification, oldest first.
func (s *ActivityService) ListUnverified(page, limit int) (*dto.ActivitiesListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := s.db.Model(&models.Activity{}).Where("verified = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var activities []models.Activity
	if err := query.Order("date ASC").Limit(limit).Offset(offset).Find(&activities).Error; err != nil {
		return nil, err
	}

	resp := &dto.ActivitiesListResponse{
		Activities: make([]dto.ActivityResponse, len(activities)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	for i := range activities {
		resp.Activities[i] = *mapActivityToResponse(&activities[i])
	}
	return resp, nil
}

func mapActivityToResponse(a *models.Activity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Category:    a.Category,
		Description: a.Description,
		Value:       a.Value,
		Unit:        a.Unit,
		Date:        a.Date.Format("2006-01-02"),
		Verified:    a.Verified,
		VerifiedAt:  a.VerifiedAt,
		VerifiedBy:  a.VerifiedBy,
		ImpactLevel: a.ImpactLevel,
		Notes:       a.Notes,
		Location:    a.Location,
		Tags:        a.Tags,
		CreatedAt:   a.CreatedAt,
	}
}
