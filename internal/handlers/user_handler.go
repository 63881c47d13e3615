package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(user.ToResponse())
}
