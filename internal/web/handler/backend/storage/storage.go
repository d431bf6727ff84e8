package storage

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend"
)

const cacheControl = "public, max-age=31536000, immutable"

// Service serves objects held by the in-memory object store.
type Service struct {
	backend.Service
	objects *objectstore.Memory
}

// Handler is the object serving handler.
var Handler = Service{}

// Init registers the object route. Only an in-memory store is served here,
// a minio store serves its objects itself.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, objects objectstore.Store) {
	if app == nil || cfg == nil || objects == nil {
		log.Fatal().Msg(backend.ErrNilFatalLogMsg)
		return
	}

	mem, ok := objects.(*objectstore.Memory)
	if !ok {
		return
	}

	s.objects = mem

	app.Get(backend.ObjectPath+"/:bucket/*", s.Get)
}

// Get sends one object.
func (s *Service) Get(c *fiber.Ctx) error {
	obj, ok := s.objects.Get(c.Params("bucket"), c.Params("*"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, cacheControl)

	return c.Send(obj.Data)
}
