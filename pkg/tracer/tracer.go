package tracer

import (
	"context"

	"github.com/yusufsyaifudin/fcmpush/assets"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerAppName = "github.com/yusufsyaifudin/fcmpush"

// LogData is the request scoped data propagated into every ylog entry.
type LogData struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
}

// StartSpan starts a span on the global provider.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerAppName).Start(ctx, spanName, opts...)
}

// InitTraceProvider registers a batching provider as the global one and returns it,
// so the caller can flush it on shutdown.
func InitTraceProvider(exp sdktrace.SpanExporter, environment string) *sdktrace.TracerProvider {
	if environment == "" {
		environment = "development"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(assets.ServiceName),
			attribute.String("environment", environment),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp
}
