//go:build js && wasm

// Command webclient is the browser side of fcmpush, built with GOOS=js GOARCH=wasm.
// It reads the API base URL from window.fcmpushConfig.baseUrl (defaults to the page origin),
// fetches the client configuration and exposes window.fcmpush.
package main

import (
	"context"
	"syscall/js"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := setupLog(context.Background())

	baseURL := js.Global().Get("location").Get("origin").String()
	userID := ""
	if cfg := js.Global().Get("fcmpushConfig"); cfg.Type() == js.TypeObject {
		if v := cfg.Get("baseUrl"); v.Type() == js.TypeString {
			baseURL = v.String()
		}

		if v := cfg.Get("userId"); v.Type() == js.TypeString {
			userID = v.String()
		}
	}

	rest, err := webclient.NewRESTHandlers(webclient.RESTConfig{BaseURL: baseURL, UserID: userID})
	if err != nil {
		ylog.Error(ctx, "rest handlers: failed", ylog.KV("error", err))
		return
	}

	bootstrap, err := rest.ClientConfig(ctx)
	if err != nil {
		ylog.Error(ctx, "client config: failed", ylog.KV("error", err))
		return
	}

	saveToken, subscribe, unsubscribe := rest.Handlers()
	client, err := webclient.New(webclient.Config{
		Firebase:           bootstrap.Firebase,
		Platform:           webclient.NewJSPlatform(),
		Origins:            bootstrap.Origins,
		PublicVapidKey:     bootstrap.VapidKey,
		ServiceWorkerURL:   bootstrap.ServiceWorkerURL,
		MessageHandler:     dispatchMessage,
		SaveTokenHandler:   saveToken,
		SubscribeHandler:   subscribe,
		UnsubscribeHandler: unsubscribe,
		Topics:             bootstrap.Topics,
		ActionMaps:         bootstrap.ActionMaps,
		WithLogging:        true,
	})
	if err != nil {
		ylog.Error(ctx, "web client: failed", ylog.KV("error", err))
		return
	}

	expose(ctx, client)

	if client.Initialize(ctx) {
		client.RequestNotificationPermission(ctx)
	}

	select {}
}

// dispatchMessage emits a "fcmpush:message" DOM event carrying the raw payload.
func dispatchMessage(ctx context.Context, msg *webclient.ForegroundMessage) error {
	detail := map[string]interface{}{"detail": msg.Raw}
	event := js.Global().Get("CustomEvent").New("fcmpush:message", js.ValueOf(detail))
	js.Global().Call("dispatchEvent", event)
	return nil
}

// expose registers window.fcmpush with promise-returning subscribe, unsubscribe, requestPermission and token.
func expose(ctx context.Context, client *webclient.Client) {
	topicFunc := func(fn func(context.Context, string) bool) js.Func {
		return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			topic := ""
			if len(args) > 0 {
				topic = args[0].String()
			}

			return promise(func() interface{} { return fn(ctx, topic) })
		})
	}

	js.Global().Set("fcmpush", js.ValueOf(map[string]interface{}{
		"subscribe":   topicFunc(client.SubscribeToTopic),
		"unsubscribe": topicFunc(client.UnsubscribeFromTopic),
		"requestPermission": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			return promise(func() interface{} { return client.RequestNotificationPermission(ctx) })
		}),
		"token": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			return client.Token()
		}),
	}))
}

// promise runs fn outside the event loop and resolves a JS Promise with its result.
func promise(fn func() interface{}) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve := args[0]
		go func() {
			resolve.Invoke(fn())
		}()

		executor.Release()
		return nil
	})

	return js.Global().Get("Promise").New(executor)
}

func setupLog(ctx context.Context) context.Context {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:     "ts",
			MessageKey:  "msg",
			LevelKey:    "level",
			EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel: zapcore.LowercaseLevelEncoder,
			LineEnding:  zapcore.DefaultLineEnding,
		}),
		zapcore.Lock(zapcore.AddSync(consoleWriter{})),
		zapcore.InfoLevel,
	)

	traceLog, err := ylog.NewTracer(tracer.LogData{
		RemoteAddr: "browser",
		TraceID:    uuid.NewV4().String(),
	}, ylog.WithTag("tracer"))
	if err == nil {
		ctx = ylog.Inject(ctx, traceLog)
	}

	ylog.SetGlobalLogger(ylog.NewZap(zap.New(core)))
	return ctx
}

// consoleWriter writes log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}
