package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/config"
	fiberlogger "github.com/lamaindor/salon-cms/internal/logger/adapter/fiber"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web/handler"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/backup"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/gallery"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/remotesync"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/reviews"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/services"
	"github.com/lamaindor/salon-cms/internal/web/handler/admin/settings"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend/edge"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend/rest"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend/storage"
	"github.com/lamaindor/salon-cms/internal/web/handler/login"
	"github.com/lamaindor/salon-cms/internal/web/handler/logout"
	"github.com/lamaindor/salon-cms/internal/web/handler/public"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic and 503 during shutdown.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"

	readBufferSize = 8192
	bodyLimit      = 32 * 1024 * 1024
)

// Backend is what the hosted backend role needs. A nil Backend disables the role.
type Backend struct {
	DB      *gorm.DB
	Objects objectstore.Store
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	site         *site.Site
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and stops the web service gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service: admin API, storefront API and, with be set,
// the hosted backend role.
func New(cfg *config.Config, st *site.Site, be *Backend) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if st == nil {
		panic("site cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: readBufferSize,
			BodyLimit:      bodyLimit,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		site:         st,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// session check for everything below the admin API prefix
	app.Use(AuthMiddleware)

	for _, h := range []handler.Service{
		&login.Handler,
		&logout.Handler,
		&services.Handler,
		&gallery.Handler,
		&reviews.Handler,
		&settings.Handler,
		&backup.Handler,
		&remotesync.Handler,
		&public.Handler,
	} {
		h.Init(app, cfg, st)
	}

	if be != nil {
		edge.Handler.Init(app, cfg, be.DB, be.Objects)
		rest.Handler.Init(app, cfg, be.DB, be.Objects)
		storage.Handler.Init(app, cfg, be.DB, be.Objects)

		log.Info().Msg("hosted backend role enabled")
	}

	return service
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
