package server

import (
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/service"

	"github.com/gofiber/fiber/v2"
)

// JoinCommunity handles POST /api/communities/:id/join
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	membership, err := s.membershipService.JoinCommunity(c.UserContext(), id, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(membership)
}

// LeaveCommunity handles DELETE /api/communities/:id/leave
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.membershipService.LeaveCommunity(c.UserContext(), id, middleware.RequestingUser(c)); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetMembershipStatus handles GET /api/communities/:id/membership
func (s *Server) GetMembershipStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.membershipService.GetMembershipStatus(c.UserContext(), id, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(status)
}

// GetCommunityMembers handles GET /api/communities/:id/members
func (s *Server) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.membershipService.ListMembers(c.UserContext(), id, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(members)
}

// GetMyCommunities handles GET /api/users/me/communities
func (s *Server) GetMyCommunities(c *fiber.Ctx) error {
	communities, err := s.membershipService.ListUserCommunities(c.UserContext(), middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(communities)
}

// UpdateMemberRole handles PUT /api/communities/:id/members/:userId/role
func (s *Server) UpdateMemberRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetUserID, err := s.parseUserID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Role models.MembershipRole `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	membership, err := s.membershipService.UpdateMemberRole(c.UserContext(), service.UpdateMemberRoleInput{
		RequestingUserID: middleware.RequestingUser(c),
		CommunityID:      id,
		TargetUserID:     targetUserID,
		Role:             req.Role,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(membership)
}
