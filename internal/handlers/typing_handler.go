package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type TypingHandler struct {
	typingService *service.TypingService
}

func NewTypingHandler(typingService *service.TypingService) *TypingHandler {
	return &TypingHandler{typingService: typingService}
}

// GetActiveTypers lists members currently composing in the chat. Requires
// the caller to be a member.
func (h *TypingHandler) GetActiveTypers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "chatId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	typers, err := h.typingService.GetActiveTypers(chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(typers)
}
