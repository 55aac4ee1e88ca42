package webclient

import (
	"context"
	"time"
)

// Service worker message types.
const (
	MessageSetFirebaseConfig = "SET_FIREBASE_CONFIG"
	MessageAddActionMap      = "ADD_ACTION_MAP"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Platform is the browser surface the client drives: the Firebase Web SDK, the service worker
// container, the Notification API and a way to show a notice to the user.
type Platform interface {
	InitializeApp(ctx context.Context, config map[string]interface{}) error
	Messaging(ctx context.Context) (Messaging, error)
	RegisterServiceWorker(ctx context.Context, url string) (Registration, error)
	RequestPermission(ctx context.Context) (Permission, error)
	ShowNotice(ctx context.Context, message string, timeout time.Duration) error
}

// Messaging mirrors firebase.messaging.Messaging.
type Messaging interface {
	OnMessage(handler func(payload interface{}))
	OnTokenRefresh(handler func())
	UseServiceWorker(registration Registration) error
	GetToken(ctx context.Context, vapidKey string) (string, error)
}

// Registration mirrors ServiceWorkerRegistration. Each accessor returns nil when absent.
type Registration interface {
	Active() Worker
	Waiting() Worker
	Installing() Worker
}

type Worker interface {
	PostMessage(message map[string]interface{}) error
}

// firstWorker picks the active, waiting or installing worker in that order.
func firstWorker(reg Registration) Worker {
	if reg == nil {
		return nil
	}

	for _, w := range []Worker{reg.Active(), reg.Waiting(), reg.Installing()} {
		if w != nil {
			return w
		}
	}

	return nil
}
