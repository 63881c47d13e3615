package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
	userService     *service.UserService
}

func NewPresenceHandler(presenceService *service.PresenceService, userService *service.UserService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService, userService: userService}
}

// GetAllOnline returns the snapshot of online users (userID -> last activity
// millis). Best effort: may be stale by the time the caller reads it.
func (h *PresenceHandler) GetAllOnline(c *fiber.Ctx) error {
	online, err := h.presenceService.GetAllOnline()
	if err != nil {
		return httpx.FromError(c, err)
	}
	// JSON object keys are strings.
	out := make(map[string]int64, len(online))
	for userID, lastSeen := range online {
		out[strconv.FormatUint(uint64(userID), 10)] = lastSeen
	}
	return c.JSON(out)
}

func (h *PresenceHandler) GetPresence(c *fiber.Ctx) error {
	userID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	online, err := h.presenceService.IsOnline(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	lastSeen, ok, err := h.presenceService.GetLastSeen(userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	if !ok {
		lastSeen = time.Now().UnixMilli()
	}

	return c.JSON(models.PresenceEvent{
		UserID:      userID,
		DisplayName: user.DisplayName(),
		Online:      online,
		LastSeen:    lastSeen,
	})
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	return uint(v), err
}
