package pgsql_tokenrepo

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
)

// CreateDeviceTokensTable1697700000 is struct to define a migration with ID 1697700000_create_device_tokens_table
type CreateDeviceTokensTable1697700000 struct{}

// ID return unique identifier for each migration. The prefix is unix time when this migration is created.
func (m CreateDeviceTokensTable1697700000) ID(ctx context.Context) string {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensTable1697700000.ID")
	defer span.End()

	return fmt.Sprintf("%d_%s.sql", 1697700000, "create_device_tokens_table")
}

// SequenceNumber return current time when the migration is created,
// this useful to see the current status of the migration.
func (m CreateDeviceTokensTable1697700000) SequenceNumber(ctx context.Context) int {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensTable1697700000.SequenceNumber")
	defer span.End()

	return 1697700000
}

// Up return sql migration for sync database
func (m CreateDeviceTokensTable1697700000) Up(ctx context.Context) (sql string, err error) {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensTable1697700000.Up")
	defer span.End()

	sql = `
CREATE TABLE IF NOT EXISTS device_tokens (
	id BIGINT NOT NULL PRIMARY KEY,
	token VARCHAR NOT NULL,
	user_id VARCHAR NOT NULL DEFAULT '',
	topics VARCHAR[] NOT NULL DEFAULT '{}',
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS unique_idx_device_tokens_token ON device_tokens (token);
`

	return
}

// Down return sql migration for rollback database
func (m CreateDeviceTokensTable1697700000) Down(ctx context.Context) (sql string, err error) {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensTable1697700000.Down")
	defer span.End()

	sql = `DROP TABLE IF EXISTS device_tokens;`
	return
}
