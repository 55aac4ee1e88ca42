package msgsvc_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
)

type fakeClient struct {
	mu       sync.Mutex
	sent     []*messaging.Message
	dryRun   bool
	sendErr  error
	batchErr error
	topics   []string
}

var _ fcm.Client = (*fakeClient)(nil)

func (f *fakeClient) Send(ctx context.Context, message *messaging.Message, dryRun bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, message)
	f.dryRun = dryRun
	if f.sendErr != nil {
		return "", f.sendErr
	}

	return "projects/p/messages/123", nil
}

func (f *fakeClient) SendEach(ctx context.Context, messages []*messaging.Message, dryRun bool) (*messaging.BatchResponse, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	out := &messaging.BatchResponse{SuccessCount: len(messages)}
	for range messages {
		out.Responses = append(out.Responses, &messaging.SendResponse{Success: true, MessageID: "projects/p/messages/1"})
	}

	return out, nil
}

func (f *fakeClient) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage, dryRun bool) (*messaging.BatchResponse, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	return &messaging.BatchResponse{
		SuccessCount: 1,
		FailureCount: len(message.Tokens) - 1,
		Responses: []*messaging.SendResponse{
			{Success: true, MessageID: "projects/p/messages/1"},
			{Success: false, Error: errors.New("unregistered")},
		},
	}, nil
}

func (f *fakeClient) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	f.topics = append(f.topics, "+"+topic)
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (f *fakeClient) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	f.topics = append(f.topics, "-"+topic)
	return &messaging.TopicManagementResponse{
		FailureCount: len(tokens),
		Errors:       []*messaging.ErrorInfo{{Index: 0, Reason: "NOT_FOUND"}},
	}, nil
}

func newService(t *testing.T, client fcm.Client) *msgsvc.DefaultService {
	t.Helper()

	svc, err := msgsvc.NewWithClient(msgsvc.Config{WithLogging: true}, client)
	require.NoError(t, err)
	return svc
}

func TestInitializeAdmin(t *testing.T) {
	var calls int64
	factory := func(ctx context.Context, key *fcm.ServiceAccountKey) (fcm.Client, error) {
		atomic.AddInt64(&calls, 1)
		return &fakeClient{}, nil
	}

	svc, err := msgsvc.New(msgsvc.Config{NewClient: factory})
	require.NoError(t, err)

	assert.False(t, svc.InitializeAdmin(context.Background(), nil))

	key := &fcm.ServiceAccountKey{ProjectID: "p"}
	assert.True(t, svc.InitializeAdmin(context.Background(), key))
	assert.True(t, svc.InitializeAdmin(context.Background(), key))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestInitializeAdmin_Error(t *testing.T) {
	factory := func(ctx context.Context, key *fcm.ServiceAccountKey) (fcm.Client, error) {
		return nil, errors.New("bad key")
	}

	svc, err := msgsvc.New(msgsvc.Config{NewClient: factory})
	require.NoError(t, err)
	assert.False(t, svc.InitializeAdmin(context.Background(), &fcm.ServiceAccountKey{}))

	resp, err := svc.Send(context.Background(), &fcm.Message{Token: "t"}, false)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, msgsvc.ErrNotInitialized.Error(), resp.Exception)

	_, err = svc.SendMulticast(context.Background(), &fcm.MulticastMessage{}, false)
	assert.ErrorIs(t, err, msgsvc.ErrNotInitialized)
}

func TestSend(t *testing.T) {
	client := &fakeClient{}
	svc := newService(t, client)

	msg, err := fcm.NewSimpleMessage(fcm.SimpleMessageParams{Title: "T", Body: "B", Token: "tok", Topic: "news"})
	require.NoError(t, err)

	resp, err := svc.Send(context.Background(), msg, true)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "123", resp.MessageID)
	assert.True(t, client.dryRun)

	require.Len(t, client.sent, 1)
	assert.Equal(t, "tok", client.sent[0].Token)
	assert.Empty(t, client.sent[0].Topic)
}

func TestSend_FoldsError(t *testing.T) {
	svc := newService(t, &fakeClient{sendErr: errors.New("boom")})

	resp, err := svc.Send(context.Background(), &fcm.Message{Token: "t"}, false)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Exception)
}

func TestSend_Nil(t *testing.T) {
	svc := newService(t, &fakeClient{})

	_, err := svc.Send(context.Background(), nil, false)
	assert.ErrorIs(t, err, msgsvc.ErrNilMessage)

	_, err = svc.SendAll(context.Background(), []*fcm.Message{{Token: "a"}, nil}, false)
	assert.ErrorIs(t, err, msgsvc.ErrNilMessage)

	_, err = svc.SendMulticast(context.Background(), nil, false)
	assert.ErrorIs(t, err, msgsvc.ErrNilMulticast)
}

func TestSendAll(t *testing.T) {
	svc := newService(t, &fakeClient{})

	resp, err := svc.SendAll(context.Background(), []*fcm.Message{{Token: "a"}, {Topic: "b"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Len(t, resp.Responses, 2)
}

func TestSendAll_PropagatesError(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc := newService(t, &fakeClient{batchErr: boom})

	_, err := svc.SendAll(context.Background(), []*fcm.Message{{Token: "a"}}, false)
	assert.ErrorIs(t, err, boom)

	_, err = svc.SendMulticast(context.Background(), &fcm.MulticastMessage{Tokens: []string{"a"}}, false)
	assert.ErrorIs(t, err, boom)
}

func TestSendMulticast(t *testing.T) {
	svc := newService(t, &fakeClient{})

	resp, err := svc.SendMulticast(context.Background(), &fcm.MulticastMessage{Tokens: []string{"a", "b", "c"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, 2, resp.FailureCount)
	require.Len(t, resp.Responses, 2)
	assert.Equal(t, "unregistered", resp.Responses[1].Exception)
}

func TestTopics(t *testing.T) {
	client := &fakeClient{}
	svc := newService(t, client)

	resp, err := svc.SubscribeToTopic(context.Background(), "news", "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)

	resp, err = svc.UnsubscribeFromTopic(context.Background(), "news", "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.FailureCount)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Reason)

	assert.Equal(t, []string{"+news", "-news"}, client.topics)
}
