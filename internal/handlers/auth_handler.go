package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	csrfCookieName    = "wc_csrf"
)

type AuthHandler struct {
	authService *service.AuthService
	refreshTTL  time.Duration
}

func NewAuthHandler(authService *service.AuthService, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, refreshTTL: refreshTTL}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return httpx.BadRequest(c, "missing_fields", "Email, username, and password are required")
	}

	session, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	session, err := h.authService.Login(input)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(session)
}

// Refresh rotates the refresh token presented in the HttpOnly cookie. The
// response carries a fresh access token; the new refresh token replaces the
// cookie. A reused (already rotated) token is rejected.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
	}

	session, err := h.authService.RefreshSession(refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		return httpx.FromError(c, err)
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(session)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	accessToken := bearerToken(c)
	if accessToken != "" {
		if err := h.authService.Logout(accessToken); err != nil {
			h.clearRefreshCookie(c)
			return httpx.FromError(c, err)
		}
	}
	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Introspect(c *fiber.Ctx) error {
	var input struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	return c.JSON(fiber.Map{"valid": h.authService.Introspect(input.Token)})
}

// CSRF issues a double-submit token for cookie-authenticated routes.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return httpx.Internal(c, "csrf_generation_failed")
	}
	token := hex.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cookieSecure(),
	})
	return c.JSON(fiber.Map{"csrf_token": token})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cookieSecure(),
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cookieSecure(),
	})
}

func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") == "true"
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
