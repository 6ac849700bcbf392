package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"
)

// RegisterRoutes mounts the service endpoints on app. API handlers run with a
// request-scoped context that expires after requestTimeout; zero disables it.
func RegisterRoutes(app *fiber.App, offers *OfferHandler, cart *CartHandler, health *HealthHandler, requestTimeout time.Duration) {
	app.Get("/health", health.Check)
	app.Get("/metrics", MetricsHandler())

	withDeadline := func(h fiber.Handler) fiber.Handler {
		if requestTimeout <= 0 {
			return h
		}
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/api/v1")
	v1.Post("/offer", withDeadline(offers.CreateOffer))
	v1.Get("/offer/:restaurantId", withDeadline(offers.ListOffers))
	v1.Post("/cart/apply_offer", withDeadline(cart.ApplyOffer))
}
