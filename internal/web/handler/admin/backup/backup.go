package backup

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	backupdoc "github.com/lamaindor/salon-cms/internal/backup"
	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
)

const (
	// ExportPath downloads the export document.
	ExportPath = handler.AdminAPIPath + "/export"
	// ImportPath restores an export document.
	ImportPath = handler.AdminAPIPath + "/import"
	// FormField is the multipart field of an uploaded document.
	FormField = "file"
)

// Service is the backup handler service.
type Service struct {
	handler.Service
	site *site.Site
}

// Handler is the backup handler.
var Handler = Service{}

// Init registers the export and import routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.site = st

	app.Get(ExportPath, s.Export)
	app.Post(ImportPath, s.Import)
}

// Export sends the whole state as a downloadable JSON document.
func (s *Service) Export(c *fiber.Ctx) error {
	now := time.Now()

	data, err := s.site.Export(now).Marshal()
	if err != nil {
		return handler.Error(c, err)
	}

	c.Attachment(backupdoc.FileName(now))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	return c.Send(data)
}

// Import replaces the whole state with the uploaded document. The document is read
// from the multipart field file or, without one, from the raw body.
func (s *Service) Import(c *fiber.Ctx) error {
	data := c.Body()

	if fh, err := c.FormFile(FormField); err == nil {
		f, err := fh.Open()
		if err != nil {
			return handler.Error(c, err)
		}
		defer f.Close()

		if data, err = io.ReadAll(f); err != nil {
			return handler.Error(c, err)
		}
	}

	st, err := s.site.Import(data)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().
		Int("services", len(st.Services)).
		Int("gallery", len(st.Gallery)).
		Int("reviews", len(st.Reviews)).
		Msg("backup imported")

	return c.JSON(fiber.Map{
		"services": len(st.Services),
		"gallery":  len(st.Gallery),
		"reviews":  len(st.Reviews),
	})
}
