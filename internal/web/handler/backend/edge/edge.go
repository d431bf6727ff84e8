package edge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/adminauth"
	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/db/controller/content"
	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/remote"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend"
)

const (
	defaultBucket = "public-images"
	defaultFolder = "uploads"
)

// Service is the write endpoint handler service.
type Service struct {
	backend.Service
	cfg     *config.Config
	db      *gorm.DB
	objects objectstore.Store
}

// Handler is the write endpoint handler.
var Handler = Service{}

// Request is the body of every action.
type Request struct {
	Password string           `json:"password"`
	Action   string           `json:"action"`
	Value    map[string]any   `json:"value"`
	Services []map[string]any `json:"services"`
	Gallery  []map[string]any `json:"gallery"`
	Reviews  []map[string]any `json:"reviews"`
	DataURL  string           `json:"data_url"`
	Bucket   string           `json:"bucket"`
	Folder   string           `json:"folder"`
}

// Init registers the write endpoint with its CORS preflight.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, objects objectstore.Store) {
	if app == nil || cfg == nil || db == nil || objects == nil {
		log.Fatal().Msg(backend.ErrNilFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.objects = objects

	app.Use(remote.EdgePath, cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
		AllowMethods: "POST, OPTIONS",
	}))
	app.Post(remote.EdgePath, s.Post)
}

// Post checks the admin password and runs the requested action.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	if err := adminauth.Verify(s.cfg.Admin, req.Password); err != nil {
		if !errors.Is(err, adminauth.ErrMismatch) {
			log.Warn().Err(err).Msg("admin password check failed")
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": backend.ErrUnauthorized})
	}

	out, err := s.run(c, req)

	switch {
	case err == nil:
		return c.JSON(out)
	case errors.Is(err, ErrUnknownAction), errors.Is(err, objectstore.ErrInvalidDataURL), errors.Is(err, ErrMissingValue):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Str("action", req.Action).Msg("admin action failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (s *Service) run(c *fiber.Ctx, req *Request) (fiber.Map, error) {
	ok := fiber.Map{"ok": true}

	switch req.Action {
	case remote.ActionSaveSettings:
		if req.Value == nil {
			return nil, ErrMissingValue
		}

		value, err := json.Marshal(entity.MergeSettings(req.Value))
		if err != nil {
			return nil, err
		}

		return ok, content.SaveSettings(s.db, value)
	case remote.ActionReplaceServices:
		return ok, content.ReplaceServices(s.db, content.ServiceRows(req.Services))
	case remote.ActionReplaceGallery:
		return ok, content.ReplaceGallery(s.db, content.GalleryRows(req.Gallery))
	case remote.ActionReplaceReviews:
		return ok, content.ReplaceReviews(s.db, content.ReviewRows(req.Reviews))
	case remote.ActionUploadImage:
		url, err := s.upload(c, req)
		if err != nil {
			return nil, err
		}

		return fiber.Map{"ok": true, "publicUrl": url}, nil
	default:
		return nil, ErrUnknownAction
	}
}

func (s *Service) upload(c *fiber.Ctx, req *Request) (string, error) {
	img, err := objectstore.ParseDataURL(req.DataURL)
	if err != nil {
		return "", err
	}

	bucket := firstNonEmpty(req.Bucket, s.cfg.ObjectStorage.Bucket, defaultBucket)
	folder := strings.Trim(firstNonEmpty(req.Folder, s.cfg.ObjectStorage.Folder, defaultFolder), "/")
	key := fmt.Sprintf("%s/%d.%s", folder, time.Now().UnixMilli(), img.Ext)

	return s.objects.Put(c.UserContext(), bucket, key, img.ContentType, img.Data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
