package config

import (
	"time"

	"github.com/lamaindor/salon-cms/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode       bool // enable dev mode for development
	DB            DB
	Local         Local
	Remote        Remote
	Admin         Admin
	ObjectStorage ObjectStorage
	Image         Image
	Backup        Backup
	Log           logger.Log
	Title         string
	Webserver     Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
	ServeBackend        bool    // also serve the remote backend role (edge function + read path)
}

// Local is the bounded key-value slot storage that keeps the admin state.
type Local struct {
	Path          string // sqlite file of the slot table
	CapacityBytes int    // total byte budget for all slots
}

// Remote is the hosted backend the admin state is synced to.
type Remote struct {
	URL     string        // base url, empty disables sync
	AnonKey string        // read path api key
	Timeout time.Duration // per request timeout
	Hydrate bool          // overwrite local state from remote at boot
}

// Admin holds the shared admin secret.
type Admin struct {
	// PasswordHash is an argon2id hash of the admin password.
	PasswordHash string
	// Password is used verbatim when no hash is configured (dev only).
	Password string
	// AnonKey is the read path key accepted by the backend role.
	AnonKey string
}

// ObjectStorage is the minio/S3 compatible image storage of the backend role.
type ObjectStorage struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Folder    string
	UseSSL    bool
	PublicURL string // base url objects are served from
}

// Image ingestion settings.
type Image struct {
	MaxSide   int // longest side after downscaling
	Quality   int // jpeg fallback quality
	Workers   int // parallel decodes in a batch
	MaxPixels int // uploads announcing a larger raster are rejected
}

// Backup holds the automatic export schedule.
type Backup struct {
	Schedule string // cron expression, empty disables
	Dir      string
}
