package tracer

import (
	"net/http"

	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

type MiddlewareConfig struct {
	TracerName     string                        `validate:"required"`
	ServiceName    string                        `validate:"required"`
	SkipFunc       func(r *http.Request) bool    `validate:"-"`
	TracerProvider trace.TracerProvider          `validate:"required"`
	TextPropagator propagation.TextMapPropagator `validate:"required"`

	// RouteFunc returns the route template once the request is served, e.g. /api/v1/tokens/{token}.
	// Raw paths carry device tokens, so they are only used when RouteFunc is nil or returns "".
	RouteFunc func(r *http.Request) string `validate:"-"`
}

// statusWriter records the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}

	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}

	return s.ResponseWriter.Write(b)
}

// Middleware starts a server span per request. An invalid config disables tracing.
func Middleware(cfg MiddlewareConfig, next http.Handler) http.HandlerFunc {
	if err := validator.Validate(cfg); err != nil {
		return next.ServeHTTP
	}

	tr := cfg.TracerProvider.Tracer(cfg.TracerName)
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.SkipFunc != nil && cfg.SkipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := cfg.TextPropagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tr.Start(ctx, "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", r)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(r)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(cfg.ServiceName, "", r)...),
		)
		defer span.End()

		// headers must be set before the handler writes the status line
		cfg.TextPropagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

		sw := &statusWriter{ResponseWriter: w}
		r = r.WithContext(ctx)
		next.ServeHTTP(sw, r)

		route := ""
		if cfg.RouteFunc != nil {
			route = cfg.RouteFunc(r)
		}

		if route == "" {
			route = r.URL.Path
		}

		span.SetName(r.Method + " " + route)
		span.SetAttributes(semconv.HTTPRouteKey.String(route))

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		span.SetAttributes(semconv.HTTPAttributesFromHTTPStatusCode(status)...)
		span.SetStatus(semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(status, trace.SpanKindServer))
	}
}
