package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

// ErrNotConfigured is returned when the gateway has no credentials for the
// requested operation.
var ErrNotConfigured = errors.New("payment gateway credentials not configured")

// CheckoutSession identifies a hosted checkout page created at the provider.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// Subscription is the provider's subscription object as delivered in webhook
// events. CurrentPeriodEnd is a unix timestamp; zero means the provider did
// not report an authoritative period end.
type Subscription struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	CurrentPeriodEnd  int64             `json:"current_period_end"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// UserRef returns the correlated user identifier: the client reference id
// set at checkout, falling back to subscription metadata.
func (s *Subscription) UserRef() string {
	if s.ClientReferenceID != "" {
		return s.ClientReferenceID
	}
	return s.Metadata["user_id"]
}

// PlanRef returns the correlated plan id from subscription metadata.
func (s *Subscription) PlanRef() string {
	return s.Metadata["plan_id"]
}

// ParseSubscription decodes the subscription object out of a verified event.
func ParseSubscription(event stripe.Event) (*Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("malformed subscription payload: %w", err)
	}
	if sub.ID == "" {
		return nil, errors.New("subscription payload missing id")
	}
	return &sub, nil
}

// PaymentGateway wraps the external payment provider. Webhook signature
// verification happens here, before any event reaches the reconciler.
type PaymentGateway interface {
	CreateCheckoutSession(email string, userID uuid.UUID, plan *models.SubscriptionPlan) (*CheckoutSession, error)
	CancelSubscription(providerSubscriptionID string) error
	VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error)
}
