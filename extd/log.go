package extd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger writes JSON lines with ts, msg and level keys.
func NewZapLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			MessageKey:     "msg",
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
			LevelKey:       "level",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
		}),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(w)), // pipe to multiple writer
		level,
	)

	return zap.New(core)
}

// SetupLog sets the global ylog logger and returns ctx carrying the system trace data.
func SetupLog(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.TODO()
	}

	ylog.SetGlobalLogger(ylog.NewZap(NewZapLogger(os.Stdout, zapcore.DebugLevel)))

	propagateData := tracer.LogData{
		RemoteAddr: "system",
		TraceID:    uuid.NewV4().String(),
	}

	traceLog, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
	if err != nil {
		return ctx, fmt.Errorf("error prepare tracer system data: %w", err)
	}

	return ylog.Inject(ctx, traceLog), nil
}
