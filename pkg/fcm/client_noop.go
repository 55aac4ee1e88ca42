package fcm

import (
	"context"
	"fmt"
	"sync/atomic"

	"firebase.google.com/go/v4/messaging"
)

// Noop accepts every message without contacting FCM. It backs local runs without credentials.
type Noop struct {
	counter uint64
}

var _ Client = (*Noop)(nil)

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) nextName() string {
	return fmt.Sprintf("projects/noop/messages/%d", atomic.AddUint64(&n.counter, 1))
}

func (n *Noop) Send(ctx context.Context, message *messaging.Message, dryRun bool) (string, error) {
	return n.nextName(), nil
}

func (n *Noop) SendEach(ctx context.Context, messages []*messaging.Message, dryRun bool) (*messaging.BatchResponse, error) {
	return n.batch(len(messages)), nil
}

func (n *Noop) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage, dryRun bool) (*messaging.BatchResponse, error) {
	if message == nil {
		return n.batch(0), nil
	}

	return n.batch(len(message.Tokens)), nil
}

func (n *Noop) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (n *Noop) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (n *Noop) batch(size int) *messaging.BatchResponse {
	out := &messaging.BatchResponse{SuccessCount: size}
	for i := 0; i < size; i++ {
		out.Responses = append(out.Responses, &messaging.SendResponse{Success: true, MessageID: n.nextName()})
	}

	return out
}
