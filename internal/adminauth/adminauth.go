// Package adminauth checks the shared admin password.
package adminauth

import (
	"crypto/subtle"
	"errors"

	"github.com/alexedwards/argon2id"

	"github.com/lamaindor/salon-cms/internal/config"
)

var (
	// ErrNotConfigured is returned when neither a hash nor a plain password is set.
	ErrNotConfigured = errors.New("admin password not configured")
	// ErrMismatch is returned for a wrong or empty password.
	ErrMismatch = errors.New("unauthorized")
)

// Verify checks password against the configured argon2id hash, or against the plain
// password when no hash is set.
func Verify(admin config.Admin, password string) error {
	if admin.PasswordHash == "" && admin.Password == "" {
		return ErrNotConfigured
	}

	if password == "" {
		return ErrMismatch
	}

	if admin.PasswordHash != "" {
		match, err := argon2id.ComparePasswordAndHash(password, admin.PasswordHash)
		if err != nil {
			return err
		}

		if !match {
			return ErrMismatch
		}

		return nil
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) != 1 {
		return ErrMismatch
	}

	return nil
}
