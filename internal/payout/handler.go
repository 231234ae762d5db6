package payout

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/event"
)

// Handler exposes payout endpoints.
type Handler struct {
	coordinator *Coordinator
	events      event.Store
}

// NewHandler constructs a payout handler.
func NewHandler(coordinator *Coordinator, events event.Store) *Handler {
	return &Handler{coordinator: coordinator, events: events}
}

type payRequest struct {
	JobID               string `json:"job_id"`
	ClientAccountID     string `json:"client_account_id"`
	ContractorAccountID string `json:"contractor_account_id"`
	Amount              int64  `json:"amount"`
	Jurisdiction        string `json:"jurisdiction"`
}

func (r payRequest) toDomain() PayRequest {
	return PayRequest{
		JobID:               r.JobID,
		ClientAccountID:     r.ClientAccountID,
		ContractorAccountID: r.ContractorAccountID,
		Amount:              r.Amount,
		Jurisdiction:        r.Jurisdiction,
	}
}

type payResponse struct {
	Outcome       Outcome `json:"outcome"`
	CorrelationID string  `json:"correlation_id"`
	Reason        string  `json:"reason,omitempty"`
}

// Pay processes a single payout attempt.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.coordinator.PayJob(c.UserContext(), req.toDomain())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "payout failed unexpectedly")
	}

	return c.Status(statusFor(res.Outcome)).JSON(payResponse{
		Outcome:       res.Outcome,
		CorrelationID: res.CorrelationID,
		Reason:        res.Reason,
	})
}

type batchRequest struct {
	Items       []payRequest `json:"items"`
	Concurrency int          `json:"concurrency"`
}

// PayBatch processes a batch of payout attempts and reports per-item outcomes.
func (h *Handler) PayBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.Items) == 0 {
		return fiber.NewError(http.StatusBadRequest, "batch must not be empty")
	}

	reqs := make([]PayRequest, len(req.Items))
	for i, item := range req.Items {
		reqs[i] = item.toDomain()
	}

	items := h.coordinator.PayBatch(c.UserContext(), reqs, req.Concurrency)

	out := make([]fiber.Map, len(items))
	for i, item := range items {
		entry := fiber.Map{
			"job_id":         item.Request.JobID,
			"outcome":        item.Result.Outcome,
			"correlation_id": item.Result.CorrelationID,
		}
		if item.Result.Reason != "" {
			entry["reason"] = item.Result.Reason
		}
		if item.Err != "" {
			entry["error"] = item.Err
		}
		out[i] = entry
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"items": out})
}

// Events returns the audit trail for one payout attempt.
func (h *Handler) Events(c *fiber.Ctx) error {
	correlationID := c.Params("correlation_id")
	if correlationID == "" {
		return fiber.NewError(http.StatusBadRequest, "correlation id required")
	}

	events, err := h.events.ReadByCorrelation(c.UserContext(), correlationID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]fiber.Map, len(events))
	for i, e := range events {
		out[i] = fiber.Map{
			"id":             e.ID,
			"type":           e.Type,
			"aggregate_kind": e.AggregateKind,
			"aggregate_id":   e.AggregateID,
			"version":        e.Version,
			"payload":        e.Payload,
			"correlation_id": e.CorrelationID,
			"causation_id":   e.CausationID,
			"recorded_at":    e.RecordedAt,
		}
	}

	return c.JSON(fiber.Map{"events": out})
}

func statusFor(outcome Outcome) int {
	switch outcome {
	case OutcomeSucceeded:
		return http.StatusCreated
	case OutcomeRejected:
		return http.StatusUnprocessableEntity
	case OutcomeContended:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
