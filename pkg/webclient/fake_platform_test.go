package webclient_test

import (
	"context"
	"sync"
	"time"

	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
)

type fakeWorker struct {
	mu       sync.Mutex
	messages []map[string]interface{}
	err      error
}

func (w *fakeWorker) PostMessage(message map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, message)
	return nil
}

func (w *fakeWorker) types() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.messages))
	for _, m := range w.messages {
		out = append(out, m["type"].(string))
	}

	return out
}

type fakeRegistration struct {
	active, waiting, installing *fakeWorker
}

func (r *fakeRegistration) Active() webclient.Worker     { return orNil(r.active) }
func (r *fakeRegistration) Waiting() webclient.Worker    { return orNil(r.waiting) }
func (r *fakeRegistration) Installing() webclient.Worker { return orNil(r.installing) }

func orNil(w *fakeWorker) webclient.Worker {
	if w == nil {
		return nil
	}

	return w
}

type fakeMessaging struct {
	mu             sync.Mutex
	onMessage      func(payload interface{})
	onTokenRefresh func()
	registration   webclient.Registration
	token          string
	tokenErr       error
	vapidKey       string
}

func (m *fakeMessaging) OnMessage(handler func(payload interface{})) { m.onMessage = handler }
func (m *fakeMessaging) OnTokenRefresh(handler func())               { m.onTokenRefresh = handler }

func (m *fakeMessaging) UseServiceWorker(registration webclient.Registration) error {
	m.registration = registration
	return nil
}

func (m *fakeMessaging) GetToken(ctx context.Context, vapidKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vapidKey = vapidKey
	return m.token, m.tokenErr
}

func (m *fakeMessaging) setToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

type fakePlatform struct {
	initErr      error
	appConfig    map[string]interface{}
	messaging    *fakeMessaging
	registration *fakeRegistration
	registerErr  error
	swURL        string
	permission   webclient.Permission
	notices      []string
	noticeAfter  time.Duration
}

var _ webclient.Platform = (*fakePlatform)(nil)

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		messaging:    &fakeMessaging{token: "device-token"},
		registration: &fakeRegistration{active: &fakeWorker{}},
		permission:   webclient.PermissionGranted,
	}
}

func (p *fakePlatform) InitializeApp(ctx context.Context, config map[string]interface{}) error {
	p.appConfig = config
	return p.initErr
}

func (p *fakePlatform) Messaging(ctx context.Context) (webclient.Messaging, error) {
	return p.messaging, nil
}

func (p *fakePlatform) RegisterServiceWorker(ctx context.Context, url string) (webclient.Registration, error) {
	p.swURL = url
	if p.registerErr != nil {
		return nil, p.registerErr
	}

	return p.registration, nil
}

func (p *fakePlatform) RequestPermission(ctx context.Context) (webclient.Permission, error) {
	return p.permission, nil
}

func (p *fakePlatform) ShowNotice(ctx context.Context, message string, timeout time.Duration) error {
	p.notices = append(p.notices, message)
	p.noticeAfter = timeout
	return nil
}

// mapProxy is a Proxy over a plain value, failing the conversions that do not apply.
type mapProxy struct {
	list []interface{}
	m    map[string]interface{}
}

func (p mapProxy) AsList() ([]interface{}, error) {
	if p.list == nil {
		return nil, errNotList
	}

	return p.list, nil
}

func (p mapProxy) AsMap() (map[string]interface{}, error) {
	if p.m == nil {
		return nil, errNotMap
	}

	return p.m, nil
}
