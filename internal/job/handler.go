package job

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes job endpoints.
type Handler struct {
	jobs Store
}

// NewHandler constructs a job handler.
func NewHandler(jobs Store) *Handler {
	return &Handler{jobs: jobs}
}

type createRequest struct {
	ClientID     string `json:"client_id"`
	ContractorID string `json:"contractor_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Create registers a new unit of work awaiting payment.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ClientID == "" || req.ContractorID == "" {
		return fiber.NewError(http.StatusBadRequest, "client_id and contractor_id are required")
	}
	if req.Amount <= 0 {
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	}
	if req.Currency == "" {
		return fiber.NewError(http.StatusBadRequest, "currency is required")
	}

	j := Job{
		ID:           uuid.NewString(),
		ClientID:     req.ClientID,
		ContractorID: req.ContractorID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.jobs.Create(c.UserContext(), j); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(jobView(j))
}

// Get returns one job by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	j, err := h.jobs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "job not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(jobView(j))
}

func jobView(j Job) fiber.Map {
	view := fiber.Map{
		"id":            j.ID,
		"client_id":     j.ClientID,
		"contractor_id": j.ContractorID,
		"amount":        j.Amount,
		"currency":      j.Currency,
		"paid":          j.Paid,
		"created_at":    j.CreatedAt,
	}
	if j.PaidAt != nil {
		view["paid_at"] = j.PaidAt
	}
	return view
}
