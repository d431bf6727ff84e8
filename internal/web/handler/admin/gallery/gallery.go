package gallery

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

const (
	// Path is the gallery route group.
	Path = handler.AdminAPIPath + "/gallery"
	// FormField is the multipart field carrying the uploaded files.
	FormField = "files"
)

// Service is the gallery handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the gallery handler.
var Handler = Service{}

// UploadResult reports one file of an upload.
type UploadResult struct {
	Name  string `json:"name"`
	Item  any    `json:"item,omitempty"`
	Error string `json:"error,omitempty"`
}

// Init registers the gallery routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Upload)
		router.Delete(handler.RootPath, s.Clear)
		router.Post("/items", s.Create)
		router.Post("/reorder", s.Reorder)
		router.Put("/:id", s.UpdateAlt)
		router.Delete("/:id", s.Delete)
	})
}

// List returns the gallery in display order.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.site.ListGallery())
}

// Upload ingests a multipart batch of images. Each file is reported on its own.
func (s *Service) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return handler.BadRequest(c, "multipart form expected")
	}

	headers := form.File[FormField]
	if len(headers) == 0 {
		return handler.BadRequest(c, "no files uploaded")
	}

	files := make([]imaging.File, len(headers))

	for i, fh := range headers {
		files[i] = imaging.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	}

	uploads := s.site.AddGalleryImages(c.UserContext(), files)
	out := make([]UploadResult, len(uploads))
	added := 0

	for i, u := range uploads {
		out[i] = UploadResult{Name: u.Name}

		if u.Err != nil {
			out[i].Error = u.Err.Error()
			log.Warn().Err(u.Err).Str("file", u.Name).Msg("gallery upload skipped")

			continue
		}

		out[i].Item = u.Item
		added++
	}

	return c.JSON(fiber.Map{"added": added, "results": out})
}

// Create adds an item from a JSON body holding an image_url or dataUrl.
func (s *Service) Create(c *fiber.Ctx) error {
	raw, err := handler.Body(c)
	if err != nil {
		return handler.Error(c, err)
	}

	item, err := s.site.AddGalleryItem(raw)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateAlt changes the alt text of an item.
func (s *Service) UpdateAlt(c *fiber.Ctx) error {
	req := struct {
		Alt string `json:"alt"`
	}{}

	if err := c.BodyParser(&req); err != nil {
		return handler.BadRequest(c, "invalid json body")
	}

	item, err := s.site.UpdateGalleryAlt(c.Params("id"), req.Alt)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(item)
}

// Delete removes an item.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.site.DeleteGalleryItem(c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Clear removes every item.
func (s *Service) Clear(c *fiber.Ctx) error {
	if err := s.site.ClearGallery(); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Reorder moves an item onto the position of another.
func (s *Service) Reorder(c *fiber.Ctx) error {
	req := new(handler.ReorderRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid json body")
	}

	moved, err := s.site.ReorderGallery(req.MovedID, req.TargetID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"moved": moved, "items": s.site.ListGallery()})
}
