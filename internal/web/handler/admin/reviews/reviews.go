package reviews

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

// Path is the reviews route group.
const Path = handler.AdminAPIPath + "/reviews"

// Service is the reviews handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the reviews handler.
var Handler = Service{}

// Init registers the reviews routes.
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
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})
}

// List returns the reviews in display order.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.site.ListReviews())
}

// Create adds a review.
func (s *Service) Create(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	r, err := s.site.AddReview(raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Update patches a review.
func (s *Service) Update(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	r, err := s.site.UpdateReview(c.Params("id"), raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(r)
}

// Delete removes a review.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.site.DeleteReview(c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Reorder moves a review onto the position of another.
func (s *Service) Reorder(c *fiber.Ctx) error {
	req := new(handler.ReorderRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid json body")
	}

	moved, err := s.site.ReorderReviews(req.MovedID, req.TargetID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"moved": moved, "items": s.site.ListReviews()})
}
