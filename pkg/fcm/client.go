package fcm

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// Client is the subset of the Firebase Admin messaging client this service uses.
// Every send accepts dryRun to only validate the message on the FCM side.
type Client interface {
	Send(ctx context.Context, message *messaging.Message, dryRun bool) (string, error)
	SendEach(ctx context.Context, messages []*messaging.Message, dryRun bool) (*messaging.BatchResponse, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage, dryRun bool) (*messaging.BatchResponse, error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}
