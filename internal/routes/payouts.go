package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/payout"
)

// RegisterPayoutRoutes wires payout endpoints.
func RegisterPayoutRoutes(r fiber.Router, h *payout.Handler) {
	r.Post("/payouts", h.Pay)
	r.Post("/payouts/batch", h.PayBatch)
	r.Get("/payouts/:correlation_id/events", h.Events)
}
