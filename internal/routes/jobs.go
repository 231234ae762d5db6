package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/job"
)

// RegisterJobRoutes wires job endpoints.
func RegisterJobRoutes(r fiber.Router, h *job.Handler) {
	r.Post("/jobs", h.Create)
	r.Get("/jobs/:id", h.Get)
}
