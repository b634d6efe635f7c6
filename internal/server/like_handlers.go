package server

import (
	"commons/internal/middleware"
	"commons/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.likeService.ToggleLike(c.UserContext(), postID, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(status)
}

// GetLikeStatus handles GET /api/posts/:id/like
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.likeService.GetLikeStatus(c.UserContext(), postID, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(status)
}
