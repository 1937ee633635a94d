package routes

import (
	"time"

	"github.com/ecotrackhq/ecotrack-backend/internal/config"
	"github.com/ecotrackhq/ecotrack-backend/internal/handlers"
	"github.com/ecotrackhq/ecotrack-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	activityHandler *handlers.ActivityHandler,
	goalHandler *handlers.GoalHandler,
	dashboardHandler *handlers.DashboardHandler,
	billingHandler *handlers.BillingHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Public pricing page data
	api.Get("/plans", billingHandler.ListPlans)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual routes
	// This prevents JWT middleware from affecting public routes
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Activities
	activities := api.Group("/activities", middleware.JWTProtected(cfg))
	activities.Post("/", activityHandler.Create)
	activities.Get("/", activityHandler.List)
	activities.Get("/:id", activityHandler.Get)
	activities.Put("/:id", activityHandler.Update)

	// Goals
	goals := api.Group("/goals", middleware.JWTProtected(cfg))
	goals.Post("/", goalHandler.Create)
	goals.Get("/", goalHandler.List)
	goals.Get("/:id", goalHandler.Get)
	goals.Patch("/:id/progress", goalHandler.UpdateProgress)
	goals.Patch("/:id/status", goalHandler.TransitionStatus)

	// Dashboard
	api.Get("/dashboard", middleware.JWTProtected(cfg), dashboardHandler.Summary)

	// Billing
	billing := api.Group("/billing", middleware.JWTProtected(cfg))
	billing.Post("/checkout/:plan_id", billingHandler.Checkout)
	billing.Get("/subscription", billingHandler.CurrentSubscription)
	billing.Post("/cancel", billingHandler.Cancel)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/activities/unverified", activityHandler.ListUnverified)
	admin.Post("/activities/:id/verify", activityHandler.Verify)

	// Webhooks — signature-verified inside the handler (no JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.HandleStripe)
}
