package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
)

// Service is the interface for a web handler service of the admin and storefront API.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, st *site.Site)
}
