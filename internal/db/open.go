// Package db opens the gorm connections of the service.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/db/dsn"
	"github.com/lamaindor/salon-cms/internal/db/models"
	"github.com/lamaindor/salon-cms/internal/logger/adapter/stdlogger"
)

const (
	// EngineSQLite is the default engine.
	EngineSQLite = "sqlite"
	// EngineMySQL selects the mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the postgres driver.
	EnginePostgres = "postgres"

	dataDirPerm   = 0o750
	slowThreshold = 200 * time.Millisecond
)

// ErrUnknownEngine is returned for an unsupported GormEngine value.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Open connects to the content database configured in cfg.
func Open(cfg config.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.GormEngine {
	case "", EngineSQLite:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}

		dialector = sqlite.Open(cfg.Path)
	case EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case EnginePostgres:
		dialector = postgres.Open(dsn.CreatePostgres(cfg))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, cfg.GormEngine)
	}

	return gorm.Open(dialector, gormConfig())
}

// OpenLocal opens the sqlite file holding the local slot table and migrates it.
func OpenLocal(path string) (*gorm.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&models.Slot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return db, nil
}

// MigrateContent creates the backend content tables.
func MigrateContent(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ServiceRow{},
		&models.GalleryRow{},
		&models.ReviewRow{},
		&models.SettingsRow{},
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(
			stdlogger.NewComponent("gorm", zerolog.DebugLevel),
			gormlogger.Config{
				SlowThreshold:             slowThreshold,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

func ensureDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}

	return os.MkdirAll(filepath.Dir(path), dataDirPerm)
}
