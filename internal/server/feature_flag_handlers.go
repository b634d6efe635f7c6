package server

import (
	"commons/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for the
// current user. Anonymous callers see boolean flags but no partial rollouts.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := middleware.RequestingUser(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
