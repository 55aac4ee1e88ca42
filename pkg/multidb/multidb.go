package multidb

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
)

// MultiDB hands out labelled connections. Labels are case-insensitive.
type MultiDB interface {
	GetSqlx(driver Driver, key string) (*sqlx.DB, error)

	// Ping dials the labelled connection, sql.Open alone never does.
	Ping(ctx context.Context, driver Driver, key string) error
	io.Closer
}
