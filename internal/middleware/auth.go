package middleware

import (
	"strings"

	"commons/internal/identity"
	"commons/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Fiber locals keys set by the auth middleware.
const (
	UserIDLocal   = "userID"
	IdentityLocal = "identity"
)

// OnResolve is called after a credential resolves so the caller can mirror
// provider-issued users into the local store before handlers run.
type OnResolve func(c *fiber.Ctx, id *identity.Identity) error

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired enforces authentication for protected routes. The resolved
// identity and user ID are stored in Fiber locals for handlers.
func AuthRequired(resolver identity.Resolver, onResolve OnResolve) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Authorization header required"))
		}

		id, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		if onResolve != nil {
			if err := onResolve(c, id); err != nil {
				return models.RespondWithError(c, err)
			}
		}

		c.Locals(UserIDLocal, id.ID)
		c.Locals(IdentityLocal, id)
		return c.Next()
	}
}

// AuthOptional resolves the identity when a credential is present but lets
// anonymous requests through. Invalid credentials are still rejected rather
// than silently downgraded to anonymous.
func AuthOptional(resolver identity.Resolver, onResolve OnResolve) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		id, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		if onResolve != nil {
			if err := onResolve(c, id); err != nil {
				return models.RespondWithError(c, err)
			}
		}

		c.Locals(UserIDLocal, id.ID)
		c.Locals(IdentityLocal, id)
		return c.Next()
	}
}

// RequestingUser returns the authenticated user ID, or uuid.Nil for
// anonymous requests.
func RequestingUser(c *fiber.Ctx) uuid.UUID {
	if uid, ok := c.Locals(UserIDLocal).(uuid.UUID); ok {
		return uid
	}
	return uuid.Nil
}
