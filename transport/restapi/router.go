package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yusufsyaifudin/fcmpush/assets"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/handlerclient"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/handlermsg"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/handlertoken"
	"go.opentelemetry.io/otel"
)

type Config struct {
	AppServiceName string                     `validate:"required"`
	AppVersion     string                     `validate:"required"`
	AllowedOrigins []string                   `validate:"-"`
	MsgService     msgsvc.Service             `validate:"required"`
	TokenService   tokensvc.Service           `validate:"required"`
	Bootstrap      *webclient.BootstrapConfig `validate:"required"`
}

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"https://*", "http://*"}
	}

	// ** Messaging handler
	handlerMessage, err := handlermsg.NewHandler(handlermsg.HandlerConfig{
		MsgService: cfg.MsgService,
	})
	if err != nil {
		return nil, err
	}

	// ** Device token handler
	handlerToken, err := handlertoken.NewHandler(handlertoken.HandlerConfig{
		TokenService: cfg.TokenService,
	})
	if err != nil {
		return nil, err
	}

	// ** Browser client bootstrap handler
	handlerClient, err := handlerclient.NewHandler(handlerclient.HandlerConfig{
		Bootstrap: cfg.Bootstrap,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/health",
			"/ping":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Tracer-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/fcmpush",
			ServiceName:    assets.ServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // use global text map propagator
			RouteFunc:      routePattern,
		}, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, next)
	})

	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		respbuilder.WriteJSON(http.StatusOK, w, r, respbuilder.Success(r.Context(), map[string]string{
			"service": cfg.AppServiceName,
			"version": cfg.AppVersion,
		}))
	})

	// Resource: messages
	router.Route("/api/v1/messages", func(r chi.Router) {
		r.Post("/", handlerMessage.SendMessage())            // send one message
		r.Post("/batch", handlerMessage.SendAll())           // send a list of messages
		r.Post("/multicast", handlerMessage.SendMulticast()) // send one message to many tokens
	})

	// Resource: topics
	router.Route("/api/v1/topics/{topic}", func(r chi.Router) {
		r.Post("/subscribe", handlerToken.Subscribe())
		r.Post("/unsubscribe", handlerToken.Unsubscribe())
	})

	// Resource: device tokens
	router.Route("/api/v1/tokens", func(r chi.Router) {
		r.Post("/", handlerToken.SaveToken())
		r.Get("/", handlerToken.ListTokens())
		r.Delete("/{token}", handlerToken.RemoveToken())
	})

	// Resource: users
	router.Post("/api/v1/users/{user_id}/messages", handlerToken.SendToUser())

	// Resource: browser client
	router.Get("/api/v1/client-config", handlerClient.ClientConfig())

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}

// routePattern is the matched chi route, empty before routing.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}

	return rctx.RoutePattern()
}
