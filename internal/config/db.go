package config

// DB holds the database configuration settings of the remote content tables.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // sqlite, mysql or postgres
	Path       string // sqlite file, only used by the sqlite engine
}
