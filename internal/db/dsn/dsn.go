// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/lamaindor/salon-cms/internal/config"
)

// Create builds the mysql Data Source Name from the configuration.
func Create(dbCfg config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
		dbCfg.Extras,
	)

	return out
}

// CreatePostgres builds the postgres key/value Data Source Name from the configuration.
// Extras are appended verbatim, e.g. "sslmode=disable TimeZone=UTC".
func CreatePostgres(dbCfg config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Name,
	)

	if extras := strings.TrimSpace(dbCfg.Extras); extras != "" {
		out += " " + extras
	}

	return out
}

// CreatePostgresURL builds the postgres URL form used by the session storage.
func CreatePostgresURL(dbCfg config.DB) string {
	out := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
	)

	if extras := strings.TrimSpace(dbCfg.Extras); extras != "" {
		out += "?" + strings.ReplaceAll(extras, " ", "&")
	}

	return out
}
