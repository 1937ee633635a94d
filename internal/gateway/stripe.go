package gateway

import (
	"fmt"
	"math"

	"github.com/ecotrackhq/ecotrack-backend/internal/config"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements PaymentGateway against the Stripe API. Credentials
// come from the injected config; an empty key leaves the gateway constructed
// but unusable, surfacing ErrNotConfigured on use.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewStripeGateway(cfg *config.Config) *StripeGateway {
	g := &StripeGateway{
		webhookSecret: cfg.StripeWebhookSecret,
		successURL:    cfg.StripeSuccessURL,
		cancelURL:     cfg.StripeCancelURL,
		currency:      cfg.StripeCurrency,
	}
	if cfg.StripeSecretKey != "" {
		g.api = &client.API{}
		g.api.Init(cfg.StripeSecretKey, nil)
	}
	return g
}

func (g *StripeGateway) CreateCheckoutSession(email string, userID uuid.UUID, plan *models.SubscriptionPlan) (*CheckoutSession, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	interval := "month"
	if plan.BillingCycle == models.BillingYearly {
		interval = "year"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:      stripe.String(email),
		ClientReferenceID:  stripe.String(userID.String()),
		SuccessURL:         stripe.String(g.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.cancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(int64(math.Round(plan.Price * 100))),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String(interval),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(plan.Name),
					Description: stripe.String(plan.Features),
				},
			},
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"plan_id": plan.ID.String(),
				"user_id": userID.String(),
			},
		},
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) CancelSubscription(providerSubscriptionID string) error {
	if g.api == nil {
		return ErrNotConfigured
	}
	if _, err := g.api.Subscriptions.Cancel(providerSubscriptionID, nil); err != nil {
		return fmt.Errorf("failed to cancel provider subscription %s: %w", providerSubscriptionID, err)
	}
	return nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	if g.webhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
