package handlers

import (
	"errors"

	"github.com/ecotrackhq/ecotrack-backend/internal/dto"
	"github.com/ecotrackhq/ecotrack-backend/internal/gateway"
	"github.com/ecotrackhq/ecotrack-backend/internal/middleware"
	"github.com/ecotrackhq/ecotrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.billingService.ListPlans()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list plans",
		})
	}

	return c.JSON(fiber.Map{"plans": plans})
}

func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plan id",
		})
	}

	resp, err := h.billingService.StartCheckout(userID, planID)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Billing is not configured",
			})
		case errors.Is(err, services.ErrPlanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrPlanInactive):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create checkout session",
			})
		}
	}

	return c.JSON(resp)
}

func (h *BillingHandler) CurrentSubscription(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	resp, err := h.billingService.CurrentSubscription(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load subscription",
		})
	}

	return c.JSON(resp)
}

func (h *BillingHandler) Cancel(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.billingService.Cancel(userID); err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		// The local row is already deactivated; the provider call failed.
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Subscription cancelled locally but provider cancellation failed",
		})
	}

	return c.JSON(fiber.Map{"message": "Subscription cancelled"})
}
