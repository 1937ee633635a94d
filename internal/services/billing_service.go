package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/gateway"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPlanNotFound   = errors.New("subscription plan not found")
	ErrPlanInactive   = errors.New("subscription plan is not active")
	ErrUnknownUser    = errors.New("event references an unknown user")
	ErrUnknownPlan    = errors.New("event references an unknown plan")
	ErrNoSubscription = errors.New("no active subscription")
)

// fallbackEntitlement is the placeholder window applied when the provider
// reports no authoritative period end. Callers reconcile later.
const fallbackEntitlement = 30 * 24 * time.Hour

// BillingService keeps local subscription state consistent with the payment
// provider. Webhook events arrive at-least-once, possibly duplicated or out
// of order; every mutation here is idempotent by construction (upsert or
// guarded update keyed by correlation data, not event ids).
type BillingService struct {
	db *gorm.DB
	gw gateway.PaymentGateway
}

func NewBillingService(db *gorm.DB, gw gateway.PaymentGateway) *BillingService {
	return &BillingService{db: db, gw: gw}
}

// ListPlans returns the active plan catalog ordered by price.
func (s *BillingService) ListPlans() ([]dto.PlanResponse, error) {
	var plans []models.SubscriptionPlan
	if err := s.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}

	resp := make([]dto.PlanResponse, len(plans))
	for i := range plans {
		resp[i] = mapPlanToResponse(&plans[i])
	}
	return resp, nil
}

// StartCheckout requests a hosted checkout session for the given plan,
// embedding the user id and plan id so the eventual webhook can be matched
// back.
func (s *BillingService) StartCheckout(userID, planID uuid.UUID) (*dto.CheckoutResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	var plan models.SubscriptionPlan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	session, err := s.gw.CreateCheckoutSession(user.Email, user.ID, &plan)
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

// ApplySubscriptionCreated reconciles a provider subscription.created event.
// The single row per user is upserted by user identity, so redelivery of the
// same event rewrites identical fields; the DB-level upsert also serializes
// concurrent deliveries for one user.
func (s *BillingService) ApplySubscriptionCreated(sub *gateway.Subscription) error {
	userID, err := uuid.Parse(sub.UserRef())
	if err != nil {
		return fmt.Errorf("%w: bad user reference %q", ErrUnknownUser, sub.UserRef())
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
		}
		return err
	}

	planID, err := uuid.Parse(sub.PlanRef())
	if err != nil {
		return fmt.Errorf("%w: bad plan reference %q", ErrUnknownPlan, sub.PlanRef())
	}
	var plan models.SubscriptionPlan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
		}
		return err
	}

	now := time.Now().UTC()
	var endDate time.Time
	if sub.Status == "active" && sub.CurrentPeriodEnd > 0 {
		endDate = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	} else {
		endDate = now.Add(fallbackEntitlement)
	}

	record := models.UserSubscription{
		ID:                   uuid.New(),
		UserID:               user.ID,
		PlanID:               plan.ID,
		StartDate:            now,
		EndDate:              endDate,
		IsActive:             true,
		LastPaymentDate:      &now,
		StripeSubscriptionID: sub.ID,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "end_date", "is_active", "last_payment_date", "stripe_subscription_id", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription for user %s: %w", user.ID, err)
	}

	slog.Info("subscription reconciled", "user_id", user.ID, "plan", plan.Name, "provider_id", sub.ID)
	return nil
}

// ApplySubscriptionDeleted reconciles a provider subscription.deleted event.
// An unknown correlation id is a no-op: the row was already reconciled or
// never created, and the provider may redeliver freely. The row survives
// deactivation so billing history is preserved.
func (s *BillingService) ApplySubscriptionDeleted(sub *gateway.Subscription) error {
	result := s.db.Model(&models.UserSubscription{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		slog.Info("subscription.deleted for unknown correlation id, ignoring", "provider_id", sub.ID)
	}
	return nil
}

// Cancel is the user-initiated cancellation path. Local state is deactivated
// first, then cancellation is requested at the provider; a gateway failure is
// returned so the caller knows local and remote state may have diverged
// (the provider's eventual deleted webhook re-converges them).
func (s *BillingService) Cancel(userID uuid.UUID) error {
	var sub models.UserSubscription
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSubscription
		}
		return err
	}

	if err := s.db.Model(&sub).Update("is_active", false).Error; err != nil {
		return err
	}

	if sub.StripeSubscriptionID != "" {
		if err := s.gw.CancelSubscription(sub.StripeSubscriptionID); err != nil {
			return fmt.Errorf("subscription deactivated locally but provider cancellation failed: %w", err)
		}
	}
	return nil
}

// CurrentSubscription returns the caller's subscription row, if any.
func (s *BillingService) CurrentSubscription(userID uuid.UUID) (*dto.SubscriptionResponse, error) {
	var sub models.UserSubscription
	err := s.db.Preload("Plan").Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}

	return &dto.SubscriptionResponse{
		ID:              sub.ID,
		Plan:            mapPlanToResponse(&sub.Plan),
		StartDate:       sub.StartDate,
		EndDate:         sub.EndDate,
		IsActive:        sub.IsActive,
		IsValid:         sub.IsValid(time.Now().UTC()),
		LastPaymentDate: sub.LastPaymentDate,
	}, nil
}

func mapPlanToResponse(p *models.SubscriptionPlan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		BillingCycle: p.BillingCycle,
		Features:     p.FeatureList(),
	}
}
