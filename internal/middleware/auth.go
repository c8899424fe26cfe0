package middleware

import (
	"errors"

	"polyglot/internal/auth"
	"polyglot/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middlewares.
const (
	LocalUserID   = "userID"
	LocalIdentity = "identity"
)

// LegacyAuth guards the standalone REST routes. A missing bearer token is 401,
// a token that fails verification is 403.
func LegacyAuth(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Missing or malformed token"))
		}

		userID, err := v.Parse(token)
		if err != nil {
			Logger.DebugContext(c.UserContext(), "legacy token rejected", "error", err)
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid or expired token"))
		}

		c.Locals(LocalUserID, userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// ExternalIdentity verifies the identity token issued by the external auth
// provider and stores the resulting *auth.Identity in locals. Resolving the
// identity to an internal user is left to the handler.
func ExternalIdentity(v *auth.ExternalVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err == nil {
			var id *auth.Identity
			if id, err = v.Parse(token); err == nil {
				c.Locals(LocalIdentity, id)
				return c.Next()
			}
		}

		msg := "Authentication required"
		if !errors.Is(err, auth.ErrMissingToken) {
			msg = "Invalid or expired token"
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError(msg))
	}
}

// IdentityFrom returns the identity stored by ExternalIdentity, if any.
func IdentityFrom(c *fiber.Ctx) (*auth.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(*auth.Identity)
	return id, ok && id != nil
}
