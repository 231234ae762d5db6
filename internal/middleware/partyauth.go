package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/workpay/workpay/internal/party"
)

// PartyAuth authenticates requests via `Authorization: Bearer <api key>` and
// stores the verified party in request locals.
func PartyAuth(parties *party.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		apiKey, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || apiKey == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing api key")
		}

		p, err := parties.Authenticate(c.UserContext(), apiKey)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid api key")
		}

		c.Locals("party_id", p.ID)
		c.Locals("party_role", p.Role)
		c.Locals("party_jurisdiction", p.Jurisdiction)

		return c.Next()
	}
}
