package webclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

const DefaultAllowNotificationStr = "Please allow notification!"

var (
	ErrNoSubscribeHandler   = errors.New("no subscribe handler set")
	ErrNoUnsubscribeHandler = errors.New("no unsubscribe handler set")
	ErrNoServiceWorker      = errors.New("no service worker available")
)

type (
	MessageHandler   func(ctx context.Context, msg *ForegroundMessage) error
	SaveTokenHandler func(ctx context.Context, token string) error
	TopicHandler     func(ctx context.Context, topic, token string) error
)

// State is the furthest setup step the client has reached. It never goes back.
type State int

const (
	StateUninitialized State = iota
	StateAppInitialized
	StateMessagingReady
	StateServiceWorkerRegistered
	StateTokenAcquired
	// StateTopicsSubscribed needs at least one configured topic subscribed, or none configured.
	StateTopicsSubscribed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAppInitialized:
		return "app_initialized"
	case StateMessagingReady:
		return "messaging_ready"
	case StateServiceWorkerRegistered:
		return "service_worker_registered"
	case StateTokenAcquired:
		return "token_acquired"
	case StateTopicsSubscribed:
		return "topics_subscribed"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

type Config struct {
	Firebase *FirebaseConfig `validate:"required"`
	Platform Platform        `validate:"required"`
	Origins  Origins

	PublicVapidKey string

	// ServiceWorkerURL defaults to Origins.DefaultServiceWorkerURL.
	ServiceWorkerURL string

	MessageHandler     MessageHandler
	SaveTokenHandler   SaveTokenHandler
	SubscribeHandler   TopicHandler
	UnsubscribeHandler TopicHandler

	AllowNotificationStr string
	NoticeTimeout        time.Duration `validate:"min=0"`

	Topics     []string     `validate:"dive,required"`
	ActionMaps []*ActionMap `validate:"dive,required"`

	WithLogging bool
}

// Client drives the Firebase Web SDK for one browser session.
// Every step is best effort: failures are logged and reported as false, never rolled back.
type Client struct {
	config Config

	mu           sync.RWMutex
	state        State
	messaging    Messaging
	registration Registration
	token        string
}

func New(cfg Config) (*Client, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Firebase.Validate(); err != nil {
		return nil, fmt.Errorf("firebase config: %w", err)
	}

	if cfg.ServiceWorkerURL == "" {
		cfg.ServiceWorkerURL = cfg.Origins.DefaultServiceWorkerURL()
	}

	if cfg.AllowNotificationStr == "" {
		cfg.AllowNotificationStr = DefaultAllowNotificationStr
	}

	return &Client{config: cfg}, nil
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Token returns the last acquired device token, empty when none.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) ServiceWorkerURL() string {
	return c.config.ServiceWorkerURL
}

// Initialize runs app init, messaging setup, handler registration and service worker
// registration. A failing step stops the remaining ones; steps already done are kept.
func (c *Client) Initialize(ctx context.Context) bool {
	if err := c.config.Platform.InitializeApp(ctx, c.config.Firebase.SDKMap()); err != nil {
		c.handleError(ctx, "initializing app", err)
		return false
	}

	c.advance(StateAppInitialized)
	c.log(ctx, "Firebase app initialized.")

	messaging, err := c.config.Platform.Messaging(ctx)
	if err != nil {
		c.handleError(ctx, "initializing app", err)
		return false
	}

	c.mu.Lock()
	c.messaging = messaging
	c.mu.Unlock()

	c.advance(StateMessagingReady)
	c.log(ctx, "Firebase messaging service initialized.")

	// platform callbacks outlive the Initialize call
	cbCtx := context.WithoutCancel(ctx)

	messaging.OnMessage(func(payload interface{}) {
		c.onMessage(cbCtx, payload)
	})
	c.log(ctx, "Message handler set.")

	messaging.OnTokenRefresh(func() {
		c.retrieveAndSaveToken(cbCtx)
	})
	c.log(ctx, "Token refresh handler set.")

	if err = c.registerServiceWorker(ctx); err != nil {
		c.handleError(ctx, "registering service worker", err)
		return false
	}

	return true
}

// RequestNotificationPermission asks the user for permission and reacts to the answer.
// It returns true only when permission is granted.
func (c *Client) RequestNotificationPermission(ctx context.Context) bool {
	c.log(ctx, "Requesting notification permission.")

	permission, err := c.config.Platform.RequestPermission(ctx)
	if err != nil {
		c.handleError(ctx, "requesting notification permission", err)
		return false
	}

	c.log(ctx, fmt.Sprintf("Permission status: %s", permission))
	c.handlePermission(ctx, permission)
	return permission == PermissionGranted
}

func (c *Client) SubscribeToTopic(ctx context.Context, topic string) bool {
	if c.config.SubscribeHandler == nil {
		c.handleError(ctx, "subscribing to topic", ErrNoSubscribeHandler)
		return false
	}

	if err := c.config.SubscribeHandler(ctx, topic, c.Token()); err != nil {
		c.handleError(ctx, "subscribing to topic", err)
		return false
	}

	c.log(ctx, fmt.Sprintf("Subscribed to topic: %s", topic))
	return true
}

func (c *Client) UnsubscribeFromTopic(ctx context.Context, topic string) bool {
	if c.config.UnsubscribeHandler == nil {
		c.handleError(ctx, "unsubscribing from topic", ErrNoUnsubscribeHandler)
		return false
	}

	if err := c.config.UnsubscribeHandler(ctx, topic, c.Token()); err != nil {
		c.handleError(ctx, "unsubscribing from topic", err)
		return false
	}

	c.log(ctx, fmt.Sprintf("Unsubscribed from topic: %s", topic))
	return true
}

// AddActionMap posts an ADD_ACTION_MAP message to the current service worker.
func (c *Client) AddActionMap(ctx context.Context, actionMap *ActionMap) bool {
	action := fmt.Sprintf("adding action map for %s to service worker", actionMap.ActionName)

	worker := c.worker()
	if worker == nil {
		c.handleError(ctx, action, ErrNoServiceWorker)
		return false
	}

	if err := worker.PostMessage(actionMap.workerMessage(c.config.Origins)); err != nil {
		c.handleError(ctx, action, err)
		return false
	}

	c.log(ctx, fmt.Sprintf("Sent action map for %s to service worker.", actionMap.ActionName))
	return true
}

func (c *Client) registerServiceWorker(ctx context.Context) error {
	reg, err := c.config.Platform.RegisterServiceWorker(ctx, c.config.ServiceWorkerURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.registration = reg
	messaging := c.messaging
	c.mu.Unlock()

	c.advance(StateServiceWorkerRegistered)
	c.log(ctx, "Service worker registered.")

	if err = messaging.UseServiceWorker(reg); err != nil {
		return err
	}

	c.log(ctx, "Service worker set.")

	c.updateServiceWorkerFirebaseConfig(ctx)

	if !c.retrieveAndSaveToken(ctx) {
		return nil
	}

	c.subscribeToTopics(ctx)
	return nil
}

func (c *Client) updateServiceWorkerFirebaseConfig(ctx context.Context) {
	worker := c.worker()
	if worker == nil {
		c.handleError(ctx, "updating service worker firebase config", ErrNoServiceWorker)
		return
	}

	err := worker.PostMessage(map[string]interface{}{
		"type":           MessageSetFirebaseConfig,
		"firebaseConfig": c.config.Firebase.SDKMap(),
	})
	if err != nil {
		c.handleError(ctx, "updating service worker firebase config", err)
		return
	}

	c.log(ctx, "Firebase config sent to service worker.")
}

// retrieveAndSaveToken reports whether a token is held afterwards.
func (c *Client) retrieveAndSaveToken(ctx context.Context) bool {
	c.mu.RLock()
	messaging := c.messaging
	c.mu.RUnlock()

	if messaging == nil {
		return false
	}

	token, err := messaging.GetToken(ctx, c.config.PublicVapidKey)
	if err != nil {
		c.handleError(ctx, "retrieving device token", err)
		return false
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if token == "" {
		c.log(ctx, "Device token not saved.")
		return false
	}

	c.advance(StateTokenAcquired)

	if c.config.SaveTokenHandler == nil {
		c.log(ctx, "Device token not saved.")
		return true
	}

	if err = c.config.SaveTokenHandler(ctx, token); err != nil {
		c.handleError(ctx, "saving device token", err)
		return true
	}

	c.log(ctx, "Device token saved.")
	return true
}

func (c *Client) subscribeToTopics(ctx context.Context) {
	if c.config.SubscribeHandler == nil {
		c.log(ctx, "No subscribe handler set.")
		return
	}

	subscribed := 0
	for _, topic := range c.config.Topics {
		if c.SubscribeToTopic(ctx, topic) {
			subscribed++
		}
	}

	// with topics configured, at least one must go through
	if len(c.config.Topics) > 0 && subscribed == 0 {
		return
	}

	c.advance(StateTopicsSubscribed)
}

func (c *Client) handlePermission(ctx context.Context, permission Permission) {
	switch permission {
	case PermissionDenied:
		err := c.config.Platform.ShowNotice(ctx, c.config.AllowNotificationStr, c.config.NoticeTimeout)
		if err != nil {
			c.handleError(ctx, "showing notification", err)
		}

		c.log(ctx, "Notification permission denied.")

	case PermissionGranted:
		c.addActionMapsToServiceWorker(ctx)
		c.log(ctx, "Notification permission granted.")

	default:
		c.log(ctx, "Notification permission not set.")
	}
}

func (c *Client) addActionMapsToServiceWorker(ctx context.Context) {
	c.mu.RLock()
	registered := c.registration != nil
	c.mu.RUnlock()

	if !registered {
		return
	}

	for _, actionMap := range c.config.ActionMaps {
		if c.AddActionMap(ctx, actionMap) {
			c.log(ctx, fmt.Sprintf("Added action map for %s.", actionMap.ActionName))
		}
	}
}

func (c *Client) onMessage(ctx context.Context, payload interface{}) {
	msg, err := DecodeForegroundMessage(payload)
	if err != nil {
		// the handler still gets the partial message, Raw keeps what did not fit
		c.handleError(ctx, "decoding message", err)
	}

	if c.config.WithLogging {
		ylog.Info(ctx, "Message received.", ylog.KV("message", msg.Raw))
	}

	if c.config.MessageHandler == nil {
		c.log(ctx, "No message handler set.")
		return
	}

	if err = c.config.MessageHandler(ctx, msg); err != nil {
		c.handleError(ctx, "handling message", err)
	}
}

func (c *Client) worker() Worker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return firstWorker(c.registration)
}

func (c *Client) advance(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s > c.state {
		c.state = s
	}
}

func (c *Client) log(ctx context.Context, msg string) {
	if !c.config.WithLogging {
		return
	}

	ylog.Info(ctx, msg)
}

func (c *Client) handleError(ctx context.Context, action string, err error) {
	ylog.Error(ctx, fmt.Sprintf("error %s", action), ylog.KV("error", err))
}
