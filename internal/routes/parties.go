package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/party"
)

// RegisterPartyRoutes wires party registration endpoints.
func RegisterPartyRoutes(r fiber.Router, h *party.Handler, rateLimiter fiber.Handler) {
	r.Post("/parties", rateLimiter, h.Register)
}
