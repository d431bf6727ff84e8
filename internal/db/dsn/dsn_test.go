package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lamaindor/salon-cms/internal/config"
)

func TestCreate(t *testing.T) {
	cfg := config.DB{
		Host:     "db",
		Port:     3306,
		User:     "salon",
		Password: "secret",
		Name:     "content",
		Extras:   "parseTime=true",
	}

	assert.Equal(t, "salon:secret@tcp(db:3306)/content?parseTime=true", Create(cfg))
}

func TestCreatePostgres(t *testing.T) {
	cfg := config.DB{
		Host:     "pg",
		Port:     5432,
		User:     "salon",
		Password: "secret",
		Name:     "content",
	}

	assert.Equal(t, "host=pg port=5432 user=salon password=secret dbname=content", CreatePostgres(cfg))
	assert.Equal(t, "postgres://salon:secret@pg:5432/content", CreatePostgresURL(cfg))

	cfg.Extras = "sslmode=disable TimeZone=UTC"
	assert.Equal(t,
		"host=pg port=5432 user=salon password=secret dbname=content sslmode=disable TimeZone=UTC",
		CreatePostgres(cfg),
	)
	assert.Equal(t, "postgres://salon:secret@pg:5432/content?sslmode=disable&TimeZone=UTC", CreatePostgresURL(cfg))
}
