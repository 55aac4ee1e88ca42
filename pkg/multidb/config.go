package multidb

import "time"

type Driver string

func (d Driver) String() string {
	return string(d)
}

const (
	Postgres Driver = "postgres"
)

type GoSqlDb struct {
	Debug bool
	DSN   string // Data Source Name

	// Pool settings, zero keeps the database/sql default.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type DatabaseResource struct {
	Disable bool
	Driver  Driver

	// per driver configuration
	Postgres GoSqlDb
}

// DatabaseResources maps a db label to its connection. Labels are case-insensitive.
type DatabaseResources map[string]DatabaseResource
