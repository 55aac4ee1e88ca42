//go:build js && wasm

package webclient

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"
	"time"
)

var (
	ErrFirebaseNotLoaded        = errors.New("firebase sdk is not loaded")
	ErrServiceWorkerUnsupported = errors.New("service workers are not supported")
	ErrNotificationUnsupported  = errors.New("notifications are not supported")
)

// JSPlatform drives the Firebase Web SDK (v8 namespaced API) loaded on window.
type JSPlatform struct {
	window js.Value
}

var _ Platform = (*JSPlatform)(nil)

func NewJSPlatform() *JSPlatform {
	return &JSPlatform{window: js.Global()}
}

func (p *JSPlatform) InitializeApp(ctx context.Context, config map[string]interface{}) error {
	firebase := p.window.Get("firebase")
	if isNullish(firebase) {
		return ErrFirebaseNotLoaded
	}

	return catch(func() {
		firebase.Call("initializeApp", js.ValueOf(config))
	})
}

func (p *JSPlatform) Messaging(ctx context.Context) (Messaging, error) {
	firebase := p.window.Get("firebase")
	if isNullish(firebase) {
		return nil, ErrFirebaseNotLoaded
	}

	var m js.Value
	err := catch(func() {
		m = firebase.Call("messaging")
	})
	if err != nil {
		return nil, err
	}

	return &jsMessaging{v: m}, nil
}

func (p *JSPlatform) RegisterServiceWorker(ctx context.Context, url string) (Registration, error) {
	container := p.window.Get("navigator").Get("serviceWorker")
	if isNullish(container) {
		return nil, ErrServiceWorkerUnsupported
	}

	var promise js.Value
	if err := catch(func() { promise = container.Call("register", url) }); err != nil {
		return nil, err
	}

	reg, err := await(ctx, promise)
	if err != nil {
		return nil, err
	}

	return &jsRegistration{v: reg}, nil
}

func (p *JSPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	notification := p.window.Get("Notification")
	if isNullish(notification) {
		return "", ErrNotificationUnsupported
	}

	var promise js.Value
	if err := catch(func() { promise = notification.Call("requestPermission") }); err != nil {
		return "", err
	}

	v, err := await(ctx, promise)
	if err != nil {
		return "", err
	}

	return Permission(v.String()), nil
}

// ShowNotice shows a toast at the bottom of the page. A zero timeout keeps it until clicked.
func (p *JSPlatform) ShowNotice(ctx context.Context, message string, timeout time.Duration) error {
	doc := p.window.Get("document")

	return catch(func() {
		el := doc.Call("createElement", "div")
		el.Set("textContent", message)
		el.Set("className", "fcmpush-notice")

		style := el.Get("style")
		style.Set("position", "fixed")
		style.Set("bottom", "16px")
		style.Set("left", "50%")
		style.Set("transform", "translateX(-50%)")
		style.Set("padding", "12px 20px")
		style.Set("background", "#323232")
		style.Set("color", "#fff")
		style.Set("borderRadius", "4px")
		style.Set("zIndex", "2147483647")
		style.Set("cursor", "pointer")

		var onClick js.Func
		onClick = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			el.Call("remove")
			onClick.Release()
			return nil
		})
		el.Call("addEventListener", "click", onClick)
		doc.Get("body").Call("appendChild", el)

		if timeout > 0 {
			time.AfterFunc(timeout, func() {
				el.Call("remove")
			})
		}
	})
}

type jsMessaging struct {
	v js.Value
}

func (m *jsMessaging) OnMessage(handler func(payload interface{})) {
	m.v.Call("onMessage", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var payload interface{}
		if len(args) > 0 {
			payload = fromJS(args[0])
		}

		// handlers may await promises, which would deadlock the event loop here
		go handler(payload)
		return nil
	}))
}

func (m *jsMessaging) OnTokenRefresh(handler func()) {
	// removed in SDK v9, tolerate its absence
	if m.v.Get("onTokenRefresh").Type() != js.TypeFunction {
		return
	}

	m.v.Call("onTokenRefresh", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go handler()
		return nil
	}))
}

func (m *jsMessaging) UseServiceWorker(registration Registration) error {
	reg, ok := registration.(*jsRegistration)
	if !ok {
		return fmt.Errorf("unsupported registration type %T", registration)
	}

	if m.v.Get("useServiceWorker").Type() != js.TypeFunction {
		return nil
	}

	return catch(func() {
		m.v.Call("useServiceWorker", reg.v)
	})
}

func (m *jsMessaging) GetToken(ctx context.Context, vapidKey string) (string, error) {
	opts := map[string]interface{}{}
	if vapidKey != "" {
		opts["vapidKey"] = vapidKey
	}

	var promise js.Value
	if err := catch(func() { promise = m.v.Call("getToken", js.ValueOf(opts)) }); err != nil {
		return "", err
	}

	v, err := await(ctx, promise)
	if err != nil {
		return "", err
	}

	if v.Type() != js.TypeString {
		return "", nil
	}

	return v.String(), nil
}

type jsRegistration struct {
	v js.Value
}

func (r *jsRegistration) Active() Worker     { return workerOf(r.v.Get("active")) }
func (r *jsRegistration) Waiting() Worker    { return workerOf(r.v.Get("waiting")) }
func (r *jsRegistration) Installing() Worker { return workerOf(r.v.Get("installing")) }

func workerOf(v js.Value) Worker {
	if isNullish(v) {
		return nil
	}

	return &jsWorker{v: v}
}

type jsWorker struct {
	v js.Value
}

func (w *jsWorker) PostMessage(message map[string]interface{}) error {
	return catch(func() {
		w.v.Call("postMessage", js.ValueOf(message))
	})
}

// jsProxy exposes a JS object or array to ConvertPayload.
type jsProxy struct {
	v js.Value
}

var _ Proxy = jsProxy{}

func (p jsProxy) AsList() ([]interface{}, error) {
	if !js.Global().Get("Array").Call("isArray", p.v).Bool() {
		return nil, errors.New("not an array")
	}

	n := p.v.Length()
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = fromJS(p.v.Index(i))
	}

	return out, nil
}

func (p jsProxy) AsMap() (map[string]interface{}, error) {
	if p.v.Type() != js.TypeObject {
		return nil, fmt.Errorf("not an object: %s", p.v.Type())
	}

	keys := js.Global().Get("Object").Call("keys", p.v)
	out := make(map[string]interface{}, keys.Length())
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		out[k] = fromJS(p.v.Get(k))
	}

	return out, nil
}

func fromJS(v js.Value) interface{} {
	switch v.Type() {
	case js.TypeNull, js.TypeUndefined:
		return nil
	case js.TypeString:
		return v.String()
	case js.TypeNumber:
		return v.Float()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeObject:
		return jsProxy{v: v}
	}

	return v
}

func isNullish(v js.Value) bool {
	return v.IsNull() || v.IsUndefined()
}

// await blocks until promise settles or ctx is done. It must not run on the JS event loop goroutine.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	done := make(chan struct{})

	var (
		result js.Value
		err    error
	)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			result = args[0]
		}

		close(done)
		return nil
	})

	onReject := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		err = errors.New("promise rejected")
		if len(args) > 0 {
			err = fmt.Errorf("promise rejected: %s", jsErrorString(args[0]))
		}

		close(done)
		return nil
	})

	go func() {
		<-done
		onResolve.Release()
		onReject.Release()
	}()

	promise.Call("then", onResolve, onReject)

	select {
	case <-done:
		return result, err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func jsErrorString(v js.Value) string {
	if isNullish(v) {
		return v.Type().String()
	}

	if v.Type() == js.TypeObject {
		if msg := v.Get("message"); msg.Type() == js.TypeString {
			return msg.String()
		}
	}

	return v.Call("toString").String()
}

// catch turns a panicking js call into an error.
func catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if e, ok := r.(error); ok {
			err = e
			return
		}

		err = fmt.Errorf("%v", r)
	}()

	fn()
	return nil
}
