package tokensvc_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/worker"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
)

type seqUID struct {
	n uint64
}

func (s *seqUID) NextID() (uint64, error) {
	return atomic.AddUint64(&s.n, 1), nil
}

// rejectingMsg fails every topic call for the rejected topic and counts multicast calls.
type rejectingMsg struct {
	msgsvc.Service

	rejected   string
	multicasts int32
	unsubs     []string
}

func (r *rejectingMsg) SubscribeToTopic(ctx context.Context, topic, token string) (*fcm.TopicManagementResponse, error) {
	if topic == r.rejected {
		return fcm.NewTopicManagementResponse(0, 1, []*fcm.TopicManagementError{{Index: 0, Reason: "INVALID_ARGUMENT"}}), nil
	}

	return r.Service.SubscribeToTopic(ctx, topic, token)
}

func (r *rejectingMsg) UnsubscribeFromTopic(ctx context.Context, topic, token string) (*fcm.TopicManagementResponse, error) {
	r.unsubs = append(r.unsubs, topic+":"+token)
	return r.Service.UnsubscribeFromTopic(ctx, topic, token)
}

func (r *rejectingMsg) SendMulticast(ctx context.Context, message *fcm.MulticastMessage, dryRun bool) (*fcm.BatchResponse, error) {
	atomic.AddInt32(&r.multicasts, 1)
	return r.Service.SendMulticast(ctx, message, dryRun)
}

func newService(t *testing.T) (*tokensvc.DefaultService, *rejectingMsg) {
	t.Helper()
	return newServiceWithWorker(t, nil)
}

func newServiceWithWorker(t *testing.T, pool worker.Service) (*tokensvc.DefaultService, *rejectingMsg) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo, err := tokenrepo.Redis(tokenrepo.RepoRedisConfig{Client: client, KeyPrefix: "test"})
	require.NoError(t, err)

	msg, err := msgsvc.NewWithClient(msgsvc.Config{}, fcm.NewNoop())
	require.NoError(t, err)

	fake := &rejectingMsg{Service: msg, rejected: "forbidden"}
	svc, err := tokensvc.New(tokensvc.Config{
		UIDGen:     &seqUID{},
		TokenRepo:  repo,
		MsgService: fake,
		Worker:     pool,
	})
	require.NoError(t, err)

	return svc, fake
}

func TestNew(t *testing.T) {
	svc, err := tokensvc.New(tokensvc.Config{})
	assert.Nil(t, svc)
	assert.Error(t, err)
}

func TestSaveToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: "  "})
	assert.Error(t, err)

	out, err := svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: " tok-a ", UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "tok-a", out.DeviceToken.Token)
	assert.Equal(t, int64(1), out.DeviceToken.ID)

	// saving again keeps the first id
	out, err = svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: "tok-a", UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.DeviceToken.ID)
}

func TestSubscribe(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	out, err := svc.Subscribe(ctx, tokensvc.InputTopic{Topic: "news", Token: "tok-a"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Response.SuccessCount)
	assert.True(t, out.DeviceToken.HasTopic("news"))

	out, err = svc.Subscribe(ctx, tokensvc.InputTopic{Topic: "forbidden", Token: "tok-a"})
	assert.ErrorIs(t, err, tokensvc.ErrTopicRejected)
	require.NotNil(t, out.Response)
	assert.Equal(t, 1, out.Response.FailureCount)

	list, err := svc.ListTokens(ctx, tokensvc.InputListTokens{Topic: "forbidden"})
	require.NoError(t, err)
	assert.Empty(t, list.DeviceTokens)

	out, err = svc.Unsubscribe(ctx, tokensvc.InputTopic{Topic: "news", Token: "tok-a"})
	require.NoError(t, err)
	assert.False(t, out.DeviceToken.HasTopic("news"))

	// unknown token is in sync already
	_, err = svc.Unsubscribe(ctx, tokensvc.InputTopic{Topic: "news", Token: "unknown"})
	assert.NoError(t, err)
}

func TestRemoveToken(t *testing.T) {
	svc, fake := newService(t)
	ctx := context.Background()

	_, err := svc.RemoveToken(ctx, tokensvc.InputRemoveToken{Token: "missing"})
	assert.ErrorIs(t, err, tokenrepo.ErrNotFound)

	_, err = svc.Subscribe(ctx, tokensvc.InputTopic{Topic: "news", Token: "tok-a"})
	require.NoError(t, err)

	out, err := svc.RemoveToken(ctx, tokensvc.InputRemoveToken{Token: "tok-a"})
	require.NoError(t, err)
	assert.Equal(t, "tok-a", out.DeviceToken.Token)
	assert.Equal(t, []string{"news:tok-a"}, fake.unsubs)
}

func TestListTokens(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: fmt.Sprintf("tok-%d", i), UserID: "alice"})
		require.NoError(t, err)
	}

	out, err := svc.ListTokens(ctx, tokensvc.InputListTokens{UserID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.DeviceTokens, 2)
	assert.Equal(t, int64(2), out.NextID)

	out, err = svc.ListTokens(ctx, tokensvc.InputListTokens{UserID: "alice", AfterID: out.NextID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.DeviceTokens, 1)
	assert.Zero(t, out.NextID)

	_, err = svc.ListTokens(ctx, tokensvc.InputListTokens{Limit: 5000})
	assert.Error(t, err)
}

func TestSendToUser(t *testing.T) {
	pool := worker.NewWorker(2, 2)
	defer pool.Done()

	testCases := []struct {
		Name string
		Pool worker.Service
	}{
		{Name: "inline", Pool: nil},
		{Name: "worker pool", Pool: pool},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			testSendToUser(t, testCase.Pool)
		})
	}
}

func TestSendToUser_StoppedWorker(t *testing.T) {
	pool := worker.NewWorker(1, 1)
	pool.Done()

	svc, fake := newServiceWithWorker(t, pool)
	ctx := context.Background()

	_, err := svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: "tok", UserID: "bob"})
	require.NoError(t, err)

	msg, err := fcm.NewMulticastMessage(fcm.MulticastMessage{})
	require.NoError(t, err)

	_, err = svc.SendToUser(ctx, tokensvc.InputSendToUser{UserID: "bob", Message: msg})
	assert.ErrorIs(t, err, worker.ErrStopped)
	assert.Zero(t, atomic.LoadInt32(&fake.multicasts))
}

func testSendToUser(t *testing.T, pool worker.Service) {
	svc, fake := newServiceWithWorker(t, pool)
	ctx := context.Background()

	msg, err := fcm.NewMulticastMessage(fcm.MulticastMessage{Data: map[string]interface{}{"k": "v"}})
	require.NoError(t, err)

	_, err = svc.SendToUser(ctx, tokensvc.InputSendToUser{UserID: "alice", Message: msg})
	assert.ErrorIs(t, err, tokensvc.ErrNoTokens)

	total := tokensvc.MaxMulticastTokens + 2
	for i := 0; i < total; i++ {
		_, err = svc.SaveToken(ctx, tokensvc.InputSaveToken{Token: fmt.Sprintf("tok-%d", i), UserID: "alice"})
		require.NoError(t, err)
	}

	out, err := svc.SendToUser(ctx, tokensvc.InputSendToUser{UserID: "alice", Message: msg, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, out.Tokens, total)
	assert.Equal(t, total, out.Response.SuccessCount)
	assert.Len(t, out.Response.Responses, total)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.multicasts))
	assert.Empty(t, msg.Tokens)
}
