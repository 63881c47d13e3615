package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type UnreadHandler struct {
	unreadService    *service.UnreadService
	readStateService *service.ReadStateService
}

func NewUnreadHandler(unreadService *service.UnreadService, readStateService *service.ReadStateService) *UnreadHandler {
	return &UnreadHandler{unreadService: unreadService, readStateService: readStateService}
}

// GetAll returns the current user's unread counts across all chats.
func (h *UnreadHandler) GetAll(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}

	counts, err := h.unreadService.GetAll(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	out := make(map[string]int64, len(counts))
	for chatID, count := range counts {
		out[strconv.FormatUint(uint64(chatID), 10)] = count
	}
	return c.JSON(out)
}

type markReadRequest struct {
	LastMessageID uint `json:"last_message_id"`
}

// MarkRead records the read acknowledgment for a chat and zeroes its unread
// counter.
func (h *UnreadHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if err := h.readStateService.MarkRead(chatID, userID, req.LastMessageID); err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Chat marked as read"})
}

// GetChatReadState returns every member's read marker for a chat (read
// receipts). Member only.
func (h *UnreadHandler) GetChatReadState(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	states, err := h.readStateService.ListForChat(chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(states)
}
