package remotesync

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

const (
	// Path reports and triggers the remote sync.
	Path = handler.AdminAPIPath + "/sync"
	// UsagePath reports the local storage usage.
	UsagePath = handler.AdminAPIPath + "/usage"
)

// Service is the sync handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the sync handler.
var Handler = Service{}

// Init registers the sync and usage routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Get(Path, s.Status)
	app.Post(Path, s.Now)
	app.Get(UsagePath, s.Usage)
}

// Status returns the result of the last push.
func (s *Service) Status(c *fiber.Ctx) error {
	return c.JSON(s.site.SyncStatus())
}

// Now pushes the whole state and returns the result. A failed push is still a 200,
// the local state is unaffected.
func (s *Service) Now(c *fiber.Ctx) error {
	return c.JSON(s.site.SyncNow())
}

// Usage returns the local storage usage.
func (s *Service) Usage(c *fiber.Ctx) error {
	usage, err := s.site.Usage()
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(usage)
}
