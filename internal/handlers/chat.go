package handlers

import (
	"strconv"

	"github.com/filoshare/backend/internal/middleware"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves the REST side of chat: room bootstrap and history
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// GetOrCreateRoom returns the direct room with another user, creating
// it on first contact
func (h *ChatHandler) GetOrCreateRoom(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		OtherUserID uint `json:"otherUserId"`
	}
	if err := c.BodyParser(&req); err != nil || req.OtherUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Other user id is required",
		})
	}

	room, err := h.chat.GetOrCreateRoom(userID, req.OtherUserID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"room":    room,
	})
}

// GetMyRooms lists the caller's rooms, most recent activity first
func (h *ChatHandler) GetMyRooms(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	rooms, err := h.chat.ListRoomsForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"rooms":   rooms,
	})
}

// GetMessages replays a room's history in creation order; members only
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	roomID, err := strconv.ParseUint(c.Params("roomId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid room id",
		})
	}

	if _, err := h.chat.RoomForMember(uint(roomID), userID); err != nil {
		return serviceError(c, err)
	}

	messages, err := h.chat.ListMessages(uint(roomID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}
