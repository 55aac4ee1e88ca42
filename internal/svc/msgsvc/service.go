package msgsvc

import (
	"context"
	"errors"

	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
)

var (
	ErrNilMessage     = errors.New("message must be an instance of Message")
	ErrNilMulticast   = errors.New("message must be an instance of MulticastMessage")
	ErrNotInitialized = errors.New("firebase admin is not initialized")
)

// Service is the server side gateway to Firebase Cloud Messaging.
// It compiles the model messages into the Admin SDK types and converts the SDK results back.
type Service interface {
	// InitializeAdmin creates the messaging client once per Service. Later calls are no-op.
	// It reports whether a client exists after the call.
	InitializeAdmin(ctx context.Context, key *fcm.ServiceAccountKey) bool

	// Send never returns a send-time failure as error, it is folded into the Response.
	Send(ctx context.Context, message *fcm.Message, dryRun bool) (*fcm.Response, error)

	// SendAll and SendMulticast return the error of the underlying send call.
	SendAll(ctx context.Context, messages []*fcm.Message, dryRun bool) (*fcm.BatchResponse, error)
	SendMulticast(ctx context.Context, message *fcm.MulticastMessage, dryRun bool) (*fcm.BatchResponse, error)

	SubscribeToTopic(ctx context.Context, topic, token string) (*fcm.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, topic, token string) (*fcm.TopicManagementResponse, error)
}
