package handlers

import (
	"errors"
	"log/slog"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/gateway"
	"github.com/ecotrackhq/ecotrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	billingService *services.BillingService
	gateway        gateway.PaymentGateway
}

func NewWebhookHandler(billingService *services.BillingService, gw gateway.PaymentGateway) *WebhookHandler {
	return &WebhookHandler{
		billingService: billingService,
		gateway:        gw,
	}
}

// HandleStripe verifies the signature over the raw body, then dispatches the
// subscription lifecycle events. Unhandled event types are acknowledged so
// Stripe stops retrying them.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	event, err := h.gateway.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Billing is not configured",
			})
		}
		slog.Warn("webhook signature verification failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook signature",
		})
	}

	switch event.Type {
	case "customer.subscription.created":
		sub, err := gateway.ParseSubscription(event)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Malformed event payload",
			})
		}
		if err := h.billingService.ApplySubscriptionCreated(sub); err != nil {
			if errors.Is(err, services.ErrUnknownUser) || errors.Is(err, services.ErrUnknownPlan) {
				// Bad references are not retryable; acknowledge and move on.
				slog.Error("webhook references unknown entity", "event_id", event.ID, "error", err)
				return c.JSON(fiber.Map{"received": true})
			}
			slog.Error("webhook processing failed", "event_id", event.ID, "event_type", event.Type, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to process webhook event",
			})
		}
	case "customer.subscription.deleted":
		sub, err := gateway.ParseSubscription(event)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Malformed event payload",
			})
		}
		if err := h.billingService.ApplySubscriptionDeleted(sub); err != nil {
			slog.Error("webhook processing failed", "event_id", event.ID, "event_type", event.Type, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to process webhook event",
			})
		}
	default:
		slog.Info("webhook event ignored", "event_id", event.ID, "event_type", event.Type)
	}

	slog.Info("webhook processed", "event_id", event.ID, "event_type", event.Type)
	return c.JSON(fiber.Map{"received": true})
}
