package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type ChatHandler struct {
	chatService    *service.ChatService
	messageService *service.MessageService
}

func NewChatHandler(chatService *service.ChatService, messageService *service.MessageService) *ChatHandler {
	return &ChatHandler{chatService: chatService, messageService: messageService}
}

func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}

	var input service.CreateChatInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	chat, err := h.chatService.CreateChat(userID, input)
	if err != nil {
		return httpx.BadRequest(c, "chat_creation_failed", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (h *ChatHandler) GetMyChats(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}

	chats, err := h.chatService.GetUserChats(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(chats)
}

type addMemberRequest struct {
	UserID uint `json:"user_id"`
}

func (h *ChatHandler) AddMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return httpx.BadRequest(c, "invalid_body", "user_id is required")
	}

	if err := h.chatService.AddMember(chatID, userID, req.UserID); err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Member added"})
}

func (h *ChatHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}
	memberID, err := paramUint(c, "userId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	if err := h.chatService.RemoveMember(chatID, userID, memberID); err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	message, err := h.messageService.SendMessage(chatID, userID, input)
	if err != nil {
		if apperr.IsForbidden(err) || apperr.IsNotFound(err) || apperr.IsStoreUnavailable(err) {
			return httpx.FromError(c, err)
		}
		return httpx.BadRequest(c, "message_rejected", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}
	chatID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	cursor, _ := strconv.ParseUint(c.Query("cursor", "0"), 10, 32)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	messages, err := h.messageService.GetChatMessages(chatID, userID, uint(cursor), limit)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(messages)
}
