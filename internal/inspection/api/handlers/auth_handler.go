package handlers

import (
	"errors"
	"net/http"
	"time"

	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler fallback credential login handler
type AuthHandler struct {
	Auth app.AuthUseCase
}

// NewAuthHandler create auth handler
func NewAuthHandler(auth app.AuthUseCase) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Login authenticates a capid with a date of birth, or the super admin
// with a password, and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req := &domain.LoginReq{}
	if err := c.BodyParser(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}

	res, err := h.Auth.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrMemberNotFound) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid credentials"})
		}
		logger.Log.Errorf("Login failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    res.Token,
		Expires:  time.Now().Add(12 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(res)
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	if capid != "" {
		if err := h.Auth.Logout(c.UserContext(), capid); err != nil {
			logger.Log.Errorf("Logout failed", err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"status": "success", "message": "Logged out"})
}
