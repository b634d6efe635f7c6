package server

import (
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateChatRoom handles POST /api/communities/:id/chats
func (s *Server) CreateChatRoom(c *fiber.Ctx) error {
	communityID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	room, err := s.chatService.CreateChatRoom(c.UserContext(), service.CreateChatRoomInput{
		UserID:      middleware.RequestingUser(c),
		CommunityID: communityID,
		Title:       req.Title,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetCommunityChatRooms handles GET /api/communities/:id/chats
func (s *Server) GetCommunityChatRooms(c *fiber.Ctx) error {
	communityID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	rooms, err := s.chatService.ListCommunityChatRooms(c.UserContext(), communityID, middleware.RequestingUser(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(rooms)
}

// SendChatMessage handles POST /api/chats/:id/messages
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
		Type    string `json:"type,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.UserContext(), service.SendMessageInput{
		UserID:  middleware.RequestingUser(c),
		ChatID:  chatID,
		Content: req.Content,
		Type:    req.Type,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetChatMessages handles GET /api/chats/:id/messages
func (s *Server) GetChatMessages(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	messages, err := s.chatService.ListChatMessages(c.UserContext(), service.ListMessagesInput{
		ChatID: chatID,
		UserID: middleware.RequestingUser(c),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(messages)
}
