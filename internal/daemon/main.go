package daemon

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/backup"
	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/db"
	"github.com/lamaindor/salon-cms/internal/db/dsn"
	"github.com/lamaindor/salon-cms/internal/imaging"
	"github.com/lamaindor/salon-cms/internal/objectstore"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/remote"
	"github.com/lamaindor/salon-cms/internal/site"
	"github.com/lamaindor/salon-cms/internal/web"
	"github.com/lamaindor/salon-cms/internal/web/handler/backend"
	"github.com/lamaindor/salon-cms/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	syncer     *remote.Syncer
	scheduler  *backup.Scheduler
}

// Start serves until a termination signal, then stops the web service, the backup
// schedule and waits for running pushes.
func (d *Daemon) Start() error {
	if d.scheduler != nil {
		d.scheduler.Start()
	}

	go func() {
		_ = d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	d.webService.WaitShutdown()

	if d.scheduler != nil {
		d.scheduler.Stop()
	}

	d.syncer.Wait()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	st, syncer, err := OpenSite(context.Background(), cfg, cfg.Remote.Hydrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}

	session.Init(sessionStorage(cfg.DB))

	var be *web.Backend

	if cfg.Webserver.ServeBackend {
		if be, err = openBackend(cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to open backend role")
		}
	}

	d := &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, st, be),
		syncer:     syncer,
	}

	if cfg.Backup.Schedule != "" {
		if d.scheduler, err = backup.NewScheduler(cfg.Backup.Schedule, cfg.Backup.Dir, st.State); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule backups")
		}
	}

	return d
}

// OpenSite opens the local store and boots the admin state, hydrating it from the
// hosted backend when hydrate is set.
func OpenSite(ctx context.Context, cfg *config.Config, hydrate bool) (*site.Site, *remote.Syncer, error) {
	local, err := db.OpenLocal(cfg.Local.Path)
	if err != nil {
		return nil, nil, err
	}

	client := remote.New(cfg.Remote)
	syncer := remote.NewSyncer(client, cfg.Remote.Timeout)
	images := imaging.New(cfg.Image.MaxSide, cfg.Image.Quality, cfg.Image.Workers)
	if cfg.Image.MaxPixels > 0 {
		images.MaxPixels = cfg.Image.MaxPixels
	}

	st := site.New(persist.New(local, cfg.Local.CapacityBytes), client, syncer, images)
	st.Boot(ctx, hydrate)

	if !client.Configured() {
		log.Info().Msg("no hosted backend configured, changes stay local")
	}

	return st, syncer, nil
}

func openBackend(cfg *config.Config) (*web.Backend, error) {
	content, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open content database: %w", err)
	}

	if err = db.MigrateContent(content); err != nil {
		return nil, fmt.Errorf("failed to migrate content database: %w", err)
	}

	var objects objectstore.Store

	if cfg.ObjectStorage.Enabled {
		if objects, err = objectstore.NewMinio(cfg.ObjectStorage); err != nil {
			return nil, err
		}
	} else {
		objects = objectstore.NewMemory(strings.TrimRight(cfg.Webserver.URL, "/") + backend.ObjectPath)

		log.Warn().Msg("object storage disabled, uploaded images are kept in memory")
	}

	return &web.Backend{DB: content, Objects: objects}, nil
}

// sessionStorage keeps admin sessions in the content database engine. sqlite uses
// fiber's in-memory storage.
func sessionStorage(cfg config.DB) fiber.Storage {
	switch cfg.GormEngine {
	case db.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case db.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.CreatePostgresURL(cfg),
			Table:         sessionTable,
		})
	default:
		return nil
	}
}
