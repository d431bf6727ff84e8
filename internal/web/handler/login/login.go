package login

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/adminauth"
	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
	"github.com/lamaindor/salon-cms/internal/web/session"
)

const (
	// Path is the login route.
	Path = handler.AdminAPIPath + "/login"
	// SessionPath reports whether the caller is logged in.
	SessionPath = handler.AdminAPIPath + "/session"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	site *site.Site
}

// Handler is the login handler.
var Handler = Service{}

// Request is the login body.
type Request struct {
	Password string `json:"password"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, st *site.Site) {
	if app == nil || cfg == nil || st == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.site = st

	app.Post(Path, s.Post)
	app.Get(SessionPath, s.Session)
}

// Post checks the admin password, keeps it as the secret for remote writes and
// sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)
	if err := c.BodyParser(req); err != nil || req.Password == "" {
		return handler.BadRequest(c, ErrPasswordRequired.Error())
	}

	if err := s.verify(req.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return handler.Error(c, err)
	}

	data := &session.Data{Authenticated: true, LoginAt: time.Now().UTC()}
	if err = data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return handler.Error(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	s.site.SetSecret(req.Password)

	log.Info().Str("ip", c.IP()).Msg("admin logged in")

	return c.JSON(fiber.Map{"authenticated": true, "remote": s.site.RemoteConfigured()})
}

// verify checks the password against the configured admin password. Without one
// every login is refused.
func (s *Service) verify(password string) error {
	err := adminauth.Verify(s.cfg.Admin, password)
	if errors.Is(err, adminauth.ErrNotConfigured) {
		log.Warn().Msg("login refused, no admin password configured")
	}

	return err
}

// Session reports whether the request carries a valid session and a held secret.
func (s *Service) Session(c *fiber.Ctx) error {
	data := new(session.Data)
	if id := c.Cookies(session.CookieName); id != "" {
		_ = data.Read(id)
	}

	return c.JSON(fiber.Map{
		"authenticated": data.Authenticated,
		"secret":        s.site.HasSecret(),
		"remote":        s.site.RemoteConfigured(),
	})
}
