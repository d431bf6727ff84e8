package settings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

// Path is the settings route.
const Path = handler.AdminAPIPath + "/settings"

// Service is the settings handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the settings handler.
var Handler = Service{}

// Init registers the settings routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Get(Path, s.Get)
	app.Put(Path, s.Put)
}

// Get returns the settings.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.site.Settings())
}

// Put overlays the body on the current settings.
func (s *Service) Put(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	saved, err := s.site.SaveSettings(raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(saved)
}
