package services

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

// Path is the services route group.
const Path = handler.AdminAPIPath + "/services"

// Service is the services handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the services handler.
var Handler = Service{}

// Init registers the services routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Post("/reorder", s.Reorder)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})
}

// List returns every service, or the ones matching the q query parameter.
func (s *Service) List(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		return c.JSON(s.site.SearchServices(q))
	}

	return c.JSON(s.site.ListServices())
}

// Get returns one service.
func (s *Service) Get(c *fiber.Ctx) error {
	svc, err := s.site.GetService(c.Params("id"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(svc)
}

// Create adds a service.
func (s *Service) Create(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	svc, err := s.site.AddService(raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(svc)
}

// Update patches a service.
func (s *Service) Update(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	svc, err := s.site.UpdateService(c.Params("id"), raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(svc)
}

// Delete removes a service.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.site.DeleteService(c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Reorder moves a service onto the position of another.
func (s *Service) Reorder(c *fiber.Ctx) error {
	req := new(handler.ReorderRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid json body")
	}

	moved, err := s.site.ReorderServices(req.MovedID, req.TargetID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"moved": moved, "items": s.site.ListServices()})
}
