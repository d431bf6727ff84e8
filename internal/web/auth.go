package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lamaindor/salon-cms/internal/web/handler"
	"github.com/lamaindor/salon-cms/internal/web/handler/login"
	"github.com/lamaindor/salon-cms/internal/web/session"
)

// AuthMiddleware rejects admin API requests without a valid session.
func AuthMiddleware(c *fiber.Ctx) error {
	path := strings.ToLower(c.Path())
	if !strings.HasPrefix(path, handler.AdminAPIPath) || IsLoginPage(c) {
		return c.Next()
	}

	sessData := new(session.Data)
	if loginCookie := c.Cookies(session.CookieName); loginCookie != "" {
		_ = sessData.Read(loginCookie)
	}

	if !sessData.Authenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": login.ErrUnauthorized.Error()})
	}

	return c.Next()
}

// IsLoginPage checks if the current request is for the login or session routes.
func IsLoginPage(c *fiber.Ctx) bool {
	path := strings.ToLower(c.Path())

	return strings.HasPrefix(path, login.Path) || strings.HasPrefix(path, login.SessionPath)
}
