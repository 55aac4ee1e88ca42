package extd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/container"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi"
	"github.com/yusufsyaifudin/ylog"
	jaegerPropagator "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/contrib/propagators/ot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 10 * time.Second

type ServerConfig struct {
	AppName    string
	AppVersion string
	Config     config.Config
}

// RunServer wires the container into the REST transport and blocks until SIGTERM or a server error.
// It lives in extd (extended) so a custom binary can run the same server with its own config source.
func RunServer(ctx context.Context, srvCfg ServerConfig) (err error) {
	if ctx == nil {
		ctx = context.TODO()
	}

	cfg := srvCfg.Config

	// register ot propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		&ot.OT{},
		&jaegerPropagator.Jaeger{},
	))

	if cfg.Tracing.JaegerEndpoint != "" {
		exp, _err := jaeger.New(
			jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Tracing.JaegerEndpoint)),
		)
		if _err != nil {
			err = fmt.Errorf("cannot setup jaeger exporter: %w", _err)
			ylog.Error(ctx, "tracing: failed", ylog.KV("error", err))
			return
		}

		tp := tracer.InitTraceProvider(exp, cfg.Tracing.Environment)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if _err := tp.Shutdown(flushCtx); _err != nil {
				ylog.Error(ctx, "tracing: flush failed", ylog.KV("error", _err))
			}
		}()

		ylog.Info(ctx, fmt.Sprintf("tracing: exporting to %s", cfg.Tracing.JaegerEndpoint))
	}

	// ** setup repositories
	ylog.Info(ctx, "container preparation: starting")
	repositories, err := container.SetupRepositories(ctx, cfg)
	defer func() {
		ylog.Info(ctx, "closing container: starting")
		if repositories == nil {
			ylog.Info(ctx, "closing container: no need to close")
			return
		}

		if _err := repositories.Close(); _err != nil {
			ylog.Error(ctx, "closing container: failed", ylog.KV("error", _err))
		}

		ylog.Info(ctx, "closing container: done")
	}()

	if err != nil {
		ylog.Error(ctx, "container preparation: failed", ylog.KV("error", err))
		return
	}

	ylog.Info(ctx, "container preparation: done")

	// ** START SERVICES using configured repositories
	ylog.Info(ctx, "services preparation: starting")
	services, err := container.SetupServices(ctx, cfg, repositories)
	if err != nil {
		ylog.Error(ctx, "service preparation: failed", ylog.KV("error", err))
		return
	}

	defer func() {
		if _err := services.Close(); _err != nil {
			ylog.Error(ctx, "closing services: failed", ylog.KV("error", _err))
		}
	}()

	// ** HTTP TRANSPORT
	ylog.Info(ctx, "transport preparation: starting")
	serverConfig := restapi.Config{
		AppServiceName: srvCfg.AppName,
		AppVersion:     srvCfg.AppVersion,
		AllowedOrigins: cfg.Transport.HTTP.AllowedOrigins,
		MsgService:     services.Message(),
		TokenService:   services.Token(),
		Bootstrap:      services.Bootstrap(),
	}

	server, err := restapi.NewHTTPTransport(serverConfig)
	if err != nil {
		ylog.Error(ctx, "http transport: failed", ylog.KV("error", err))
		return
	}

	h2s := &http2.Server{}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Transport.HTTP.Port),
		Handler:           h2c.NewHandler(server.Server(), h2s), // HTTP/2 Cleartext handler
		ReadHeaderTimeout: 10 * time.Second,
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		ylog.Info(ctx, fmt.Sprintf("http transport: running on port %d", cfg.Transport.HTTP.Port))
		apiErrChan <- httpServer.ListenAndServe()
	}()

	ylog.Info(ctx, "system: up and running...")

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case <-signalChan:
		ylog.Info(ctx, "system: exiting...")
		ylog.Info(ctx, "http transport: exiting...")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if _err := httpServer.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "http transport: shutdown error", ylog.KV("error", _err))
		}

	case _err := <-apiErrChan:
		if _err != nil && !errors.Is(_err, http.ErrServerClosed) {
			err = fmt.Errorf("http transport: %w", _err)
			ylog.Error(ctx, "http transport: error", ylog.KV("error", err))
		}
	}

	return
}
