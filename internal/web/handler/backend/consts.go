// Package backend holds the shared pieces of the hosted backend role: the password
// gated write endpoint, the read path and the object serving route.
package backend

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/objectstore"
)

const (
	// ErrNilFatalLogMsg is used if app, cfg, db or the object store is nil.
	ErrNilFatalLogMsg = "app, cfg, db or object store is nil"

	// ErrUnauthorized is the body error of a rejected password or key.
	ErrUnauthorized = "unauthorized"

	// ObjectPath is the prefix public objects are served under.
	ObjectPath = "/storage/v1/object/public"
)

// Service is the interface for a handler of the backend role.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB, objects objectstore.Store)
}
