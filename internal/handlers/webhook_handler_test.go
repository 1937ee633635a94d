package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/config"
	"github.com/ecotrackhq/ecotrack-backend/internal/gateway"
	"github.com/ecotrackhq/ecotrack-backend/internal/models"
	"github.com/ecotrackhq/ecotrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test_secret"

func setupWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
	))

	gw := gateway.NewStripeGateway(&config.Config{StripeWebhookSecret: testWebhookSecret})
	billingService := services.NewBillingService(db, gw)
	handler := NewWebhookHandler(billingService, gw)

	app := fiber.New()
	app.Post("/api/webhooks/stripe", handler.HandleStripe)
	return app, db
}

// signPayload produces a Stripe-Signature header for the given body.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func subscriptionEvent(eventType, subID, userRef, planRef string, periodEnd int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"status": "active",
				"current_period_end": %d,
				"client_reference_id": %q,
				"metadata": {"plan_id": %q}
			}
		}
	}`, eventType, subID, periodEnd, userRef, planRef))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db := setupWebhookApp(t)

	payload := subscriptionEvent("customer.subscription.created", "sub_1", uuid.New().String(), uuid.New().String(), time.Now().Add(720*time.Hour).Unix())

	resp := postWebhook(t, app, payload, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postWebhook(t, app, payload, "t=123,v1=deadbeef")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postWebhook(t, app, payload, signPayload(payload, "whsec_wrong_secret"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Tampering after signing fails too.
	tampered := bytes.Replace(payload, []byte("sub_1"), []byte("sub_2"), 1)
	resp = postWebhook(t, app, tampered, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestWebhookSubscriptionLifecycle(t *testing.T) {
	app, db := setupWebhookApp(t)

	user := models.User{ID: uuid.New(), Email: "hook@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	plan := models.SubscriptionPlan{ID: uuid.New(), Name: "Professional", Price: 29, BillingCycle: models.BillingMonthly, IsActive: true}
	require.NoError(t, db.Create(&plan).Error)

	periodEnd := time.Now().UTC().Add(720 * time.Hour).Unix()
	created := subscriptionEvent("customer.subscription.created", "sub_hook", user.ID.String(), plan.ID.String(), periodEnd)
	resp := postWebhook(t, app, created, signPayload(created, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.UserSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	require.True(t, stored.IsActive)
	require.Equal(t, "sub_hook", stored.StripeSubscriptionID)
	require.WithinDuration(t, time.Unix(periodEnd, 0).UTC(), stored.EndDate, time.Second)

	// Redelivery converges on the same single row.
	resp = postWebhook(t, app, created, signPayload(created, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	deleted := subscriptionEvent("customer.subscription.deleted", "sub_hook", user.ID.String(), plan.ID.String(), periodEnd)
	resp = postWebhook(t, app, deleted, signPayload(deleted, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	require.False(t, stored.IsActive)
}

func TestWebhookUnknownReferencesAreAcknowledged(t *testing.T) {
	app, db := setupWebhookApp(t)

	// Unknown user and plan: nothing the provider can do by retrying, so the
	// delivery is acknowledged and logged.
	payload := subscriptionEvent("customer.subscription.created", "sub_ghost", uuid.New().String(), uuid.New().String(), time.Now().Add(720*time.Hour).Unix())
	resp := postWebhook(t, app, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	app, db := setupWebhookApp(t)

	payload := []byte(`{"id": "evt_test_2", "type": "invoice.paid", "data": {"object": {"id": "in_1"}}}`)
	resp := postWebhook(t, app, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestWebhookDeletedUnknownIsNoOp(t *testing.T) {
	app, db := setupWebhookApp(t)

	payload := subscriptionEvent("customer.subscription.deleted", "sub_never_seen", "", "", 0)
	resp := postWebhook(t, app, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.UserSubscription{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
