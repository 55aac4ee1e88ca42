package pgsql_tokenrepo

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
)

// CreateDeviceTokensLookupIndex1697700100 adds the indexes used by list by user and by topic.
type CreateDeviceTokensLookupIndex1697700100 struct{}

func (m CreateDeviceTokensLookupIndex1697700100) ID(ctx context.Context) string {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensLookupIndex1697700100.ID")
	defer span.End()

	return fmt.Sprintf("%d_%s.sql", 1697700100, "create_device_tokens_lookup_index")
}

func (m CreateDeviceTokensLookupIndex1697700100) SequenceNumber(ctx context.Context) int {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensLookupIndex1697700100.SequenceNumber")
	defer span.End()

	return 1697700100
}

func (m CreateDeviceTokensLookupIndex1697700100) Up(ctx context.Context) (sql string, err error) {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensLookupIndex1697700100.Up")
	defer span.End()

	sql = `
CREATE INDEX IF NOT EXISTS idx_device_tokens_user_id ON device_tokens (user_id);
CREATE INDEX IF NOT EXISTS idx_device_tokens_topics ON device_tokens USING GIN (topics);
`
	return
}

func (m CreateDeviceTokensLookupIndex1697700100) Down(ctx context.Context) (sql string, err error) {
	_, span := tracer.StartSpan(ctx, "CreateDeviceTokensLookupIndex1697700100.Down")
	defer span.End()

	sql = `
DROP INDEX IF EXISTS idx_device_tokens_topics;
DROP INDEX IF EXISTS idx_device_tokens_user_id;
`
	return
}
