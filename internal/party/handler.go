package party

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes party registration.
type Handler struct {
	service *Service
}

// NewHandler constructs a party handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Jurisdiction string `json:"jurisdiction"`
	Currency     string `json:"currency"`
}

// Register creates a party and returns its account id and one-time API key.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	reg, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:         req.Name,
		Role:         req.Role,
		Jurisdiction: req.Jurisdiction,
		Currency:     req.Currency,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"party_id":   reg.Party.ID,
		"account_id": reg.AccountID,
		"api_key":    reg.APIKey,
		"role":       reg.Party.Role,
	})
}
