package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/account"
)

// RegisterAccountRoutes wires account read endpoints.
func RegisterAccountRoutes(r fiber.Router, accounts account.Store) {
	r.Get("/accounts/:id", func(c *fiber.Ctx) error {
		acc, err := accounts.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "account not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"id":         acc.ID,
			"owner_id":   acc.OwnerID,
			"role":       acc.Role,
			"currency":   acc.Currency,
			"balance":    acc.Balance,
			"version":    acc.Version,
			"created_at": acc.CreatedAt,
		})
	})
}
