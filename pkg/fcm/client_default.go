package fcm

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
}

type ClientConfig struct {
	Key *ServiceAccountKey `validate:"required"`

	// RoundTripper is the base transport below the oauth2 layer. Defaults to a logging RoundTripper.
	RoundTripper http.RoundTripper
}

type ClientDefault struct {
	msgClient *messaging.Client
}

// Ensure ClientDefault implements Client
var _ Client = (*ClientDefault)(nil)

// NewClient creates the firebase messaging client from the key held in memory.
// The key is never written to disk.
func NewClient(ctx context.Context, cfg ClientConfig) (*ClientDefault, error) {
	err := validator.Validate(cfg)
	if err != nil {
		return nil, err
	}

	keyJSON, err := cfg.Key.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode service account key error: %w", err)
	}

	cred, err := google.CredentialsFromJSON(ctx, keyJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("find default cred error: %w", err)
	}

	base := cfg.RoundTripper
	if base == nil {
		base = &RoundTripper{Base: http.DefaultTransport}
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   base,
			Source: cred.TokenSource,
		},
	}

	config := &firebase.Config{
		ProjectID: cfg.Key.ProjectID,
	}

	opt := []option.ClientOption{
		option.WithHTTPClient(httpClient),
	}

	firebaseApp, err := firebase.NewApp(ctx, config, opt...)
	if err != nil {
		return nil, fmt.Errorf("initiate firebase app client error: %w", err)
	}

	msgClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initiate fcm messaging client error: %w", err)
	}

	return &ClientDefault{msgClient: msgClient}, nil
}

func (c *ClientDefault) Send(ctx context.Context, message *messaging.Message, dryRun bool) (string, error) {
	if dryRun {
		return c.msgClient.SendDryRun(ctx, message)
	}

	return c.msgClient.Send(ctx, message)
}

func (c *ClientDefault) SendEach(ctx context.Context, messages []*messaging.Message, dryRun bool) (*messaging.BatchResponse, error) {
	if dryRun {
		return c.msgClient.SendEachDryRun(ctx, messages)
	}

	return c.msgClient.SendEach(ctx, messages)
}

func (c *ClientDefault) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage, dryRun bool) (*messaging.BatchResponse, error) {
	if dryRun {
		return c.msgClient.SendEachForMulticastDryRun(ctx, message)
	}

	return c.msgClient.SendEachForMulticast(ctx, message)
}

func (c *ClientDefault) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	return c.msgClient.SubscribeToTopic(ctx, tokens, topic)
}

func (c *ClientDefault) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	return c.msgClient.UnsubscribeFromTopic(ctx, tokens, topic)
}
