package rest

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/db/controller/content"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/remote"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend"
)

// Service is the read path handler service.
type Service struct {
	backend.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the read path handler.
var Handler = Service{}

// SettingsRow is the shape a settings read returns.
type SettingsRow struct {
	Value json.RawMessage `json:"value"`
}

// Init registers the read path. Query parameters are accepted and ignored, rows
// always come in display order.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ objectstore.Store) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(backend.ErrNilFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Route(remote.RestPath, func(router fiber.Router) {
		router.Use(s.requireKey)
		router.Get("/services", s.Services)
		router.Get("/gallery", s.Gallery)
		router.Get("/reviews", s.Reviews)
		router.Get("/settings", s.Settings)
	})
}

// requireKey checks the apikey header, or the bearer token, against the anon key.
// Without a configured key the read path is open.
func (s *Service) requireKey(c *fiber.Ctx) error {
	want := s.cfg.Admin.AnonKey
	if want == "" {
		return c.Next()
	}

	got := c.Get("apikey")
	if got == "" {
		got = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}

	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": backend.ErrUnauthorized})
	}

	return c.Next()
}

// Services lists the services table.
func (s *Service) Services(c *fiber.Ctx) error {
	return send(c, s.db, content.ListServices)
}

// Gallery lists the gallery table.
func (s *Service) Gallery(c *fiber.Ctx) error {
	return send(c, s.db, content.ListGallery)
}

// Reviews lists the reviews table.
func (s *Service) Reviews(c *fiber.Ctx) error {
	return send(c, s.db, content.ListReviews)
}

// Settings returns the global settings row as a one element array, or an empty array.
func (s *Service) Settings(c *fiber.Ctx) error {
	row, err := content.GetSettings(s.db)
	if errors.Is(err, content.ErrSettingsNotFound) {
		return c.JSON([]SettingsRow{})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to read settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON([]SettingsRow{{Value: row.Value}})
}

func send[T any](c *fiber.Ctx, db *gorm.DB, list func(*gorm.DB) ([]T, error)) error {
	rows, err := list(db)
	if err != nil {
		log.Error().Err(err).Str("path", c.Path()).Msg("failed to read table")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(rows)
}
