package multidb

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/ylog"
)

// QueryLogger sends sqldb-logger entries to ylog, errors at error level and the rest at debug.
type QueryLogger struct{}

var _ sqldblogger.Logger = (*QueryLogger)(nil)

func (q *QueryLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	if level == sqldblogger.LevelError {
		ylog.Error(ctx, msg, ylog.KV("sql", data))
		return
	}

	ylog.Debug(ctx, msg, ylog.KV("level", level.String()), ylog.KV("sql", data))
}
