package msgsvc

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/messaging"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ClientFactory builds the messaging client from a service account key.
type ClientFactory func(ctx context.Context, key *fcm.ServiceAccountKey) (fcm.Client, error)

type Config struct {
	WithLogging bool

	// NewClient defaults to fcm.NewClient with the logging RoundTripper.
	NewClient ClientFactory `validate:"-"`
}

type DefaultService struct {
	config Config

	mu     sync.RWMutex
	client fcm.Client
}

var _ Service = (*DefaultService)(nil)

func New(cfg Config) (*DefaultService, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.NewClient == nil {
		cfg.NewClient = defaultClientFactory
	}

	return &DefaultService{config: cfg}, nil
}

// NewWithClient returns a Service that is already initialized with client.
func NewWithClient(cfg Config, client fcm.Client) (*DefaultService, error) {
	svc, err := New(cfg)
	if err != nil {
		return nil, err
	}

	svc.client = client
	return svc, nil
}

func defaultClientFactory(ctx context.Context, key *fcm.ServiceAccountKey) (fcm.Client, error) {
	return fcm.NewClient(ctx, fcm.ClientConfig{Key: key})
}

func (d *DefaultService) InitializeAdmin(ctx context.Context, key *fcm.ServiceAccountKey) bool {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.InitializeAdmin")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return true
	}

	if key == nil {
		ylog.Error(ctx, "initialize firebase admin without service account key")
		return false
	}

	client, err := d.config.NewClient(ctx, key)
	if err != nil {
		span.RecordError(err)
		ylog.Error(ctx, "initialize firebase admin error", ylog.KV("error", err))
		return false
	}

	d.client = client
	d.log(ctx, fmt.Sprintf("firebase admin initialized for project %s", key.ProjectID))
	return d.client != nil
}

func (d *DefaultService) Send(ctx context.Context, message *fcm.Message, dryRun bool) (out *fcm.Response, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.Send")
	defer span.End()

	if message == nil {
		err = ErrNilMessage
		return
	}

	span.SetAttributes(attribute.String("message.kind", message.Kind()), attribute.Bool("dry_run", dryRun))

	client, err := d.getClient()
	if err != nil {
		out = fcm.ResponseFromFCM(err)
		err = nil
		d.log(ctx, fmt.Sprintf("Message Response: %s", out))
		return
	}

	name, sendErr := client.Send(ctx, compileMessage(message), dryRun)
	if sendErr != nil {
		span.RecordError(sendErr)
		out = fcm.ResponseFromFCM(sendErr)
	} else {
		out = fcm.ResponseFromFCM(name)
	}

	d.log(ctx, fmt.Sprintf("Message Response: %s", out))
	return
}

func (d *DefaultService) SendAll(ctx context.Context, messages []*fcm.Message, dryRun bool) (out *fcm.BatchResponse, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.SendAll")
	defer span.End()

	compiled := make([]*messaging.Message, 0, len(messages))
	for i, message := range messages {
		if message == nil {
			err = fmt.Errorf("messages[%d]: %w", i, ErrNilMessage)
			return
		}

		compiled = append(compiled, compileMessage(message))
	}

	span.SetAttributes(attribute.Int("messages.count", len(compiled)), attribute.Bool("dry_run", dryRun))

	client, err := d.getClient()
	if err != nil {
		return
	}

	resp, err := client.SendEach(ctx, compiled, dryRun)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("send all error: %w", err)
		return
	}

	out = fcm.BatchResponseFromFCM(resp)
	d.log(ctx, fmt.Sprintf("Message Response: %s", out))
	return
}

func (d *DefaultService) SendMulticast(ctx context.Context, message *fcm.MulticastMessage, dryRun bool) (out *fcm.BatchResponse, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.SendMulticast")
	defer span.End()

	if message == nil {
		err = ErrNilMulticast
		return
	}

	span.SetAttributes(attribute.Int("tokens.count", len(message.Tokens)), attribute.Bool("dry_run", dryRun))

	client, err := d.getClient()
	if err != nil {
		return
	}

	resp, err := client.SendEachForMulticast(ctx, compileMulticastMessage(message), dryRun)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("send multicast error: %w", err)
		return
	}

	out = fcm.BatchResponseFromFCM(resp)
	d.log(ctx, fmt.Sprintf("Message Response: %s", out))
	return
}

func (d *DefaultService) SubscribeToTopic(ctx context.Context, topic, token string) (out *fcm.TopicManagementResponse, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.SubscribeToTopic")
	defer span.End()

	client, err := d.getClient()
	if err != nil {
		return
	}

	resp, err := client.SubscribeToTopic(ctx, []string{token}, topic)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("subscribe to topic '%s' error: %w", topic, err)
		return
	}

	out = fcm.TopicManagementResponseFromFCM(resp)
	d.log(ctx, fmt.Sprintf("Subscribed %d tokens to topic %s successfully", out.SuccessCount, topic))
	return
}

func (d *DefaultService) UnsubscribeFromTopic(ctx context.Context, topic, token string) (out *fcm.TopicManagementResponse, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "msgsvc.UnsubscribeFromTopic")
	defer span.End()

	client, err := d.getClient()
	if err != nil {
		return
	}

	resp, err := client.UnsubscribeFromTopic(ctx, []string{token}, topic)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("unsubscribe from topic '%s' error: %w", topic, err)
		return
	}

	out = fcm.TopicManagementResponseFromFCM(resp)
	d.log(ctx, fmt.Sprintf("Unsubscribed %d tokens from topic %s successfully", out.SuccessCount, topic))
	return
}

func (d *DefaultService) getClient() (fcm.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.client == nil {
		return nil, ErrNotInitialized
	}

	return d.client, nil
}

func (d *DefaultService) log(ctx context.Context, msg string) {
	if !d.config.WithLogging {
		return
	}

	ylog.Info(ctx, msg)
}
