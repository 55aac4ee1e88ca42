package restapi_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi"
)

type seqUID struct {
	n uint64
}

func (s *seqUID) NextID() (uint64, error) {
	return atomic.AddUint64(&s.n, 1), nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo, err := tokenrepo.Redis(tokenrepo.RepoRedisConfig{Client: client, KeyPrefix: "api"})
	require.NoError(t, err)

	msgService, err := msgsvc.NewWithClient(msgsvc.Config{}, fcm.NewNoop())
	require.NoError(t, err)

	tokenService, err := tokensvc.New(tokensvc.Config{
		UIDGen:     &seqUID{},
		TokenRepo:  repo,
		MsgService: msgService,
	})
	require.NoError(t, err)

	transport, err := restapi.NewHTTPTransport(restapi.Config{
		AppServiceName: "fcmpush",
		AppVersion:     "test",
		MsgService:     msgService,
		TokenService:   tokenService,
		Bootstrap: &webclient.BootstrapConfig{
			VapidKey:         "vapid",
			ServiceWorkerURL: "https://app.example.com/_/theme/fb-service-worker.js",
			Topics:           []string{"news"},
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(transport.Server())
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	TraceID string                 `json:"trace_id"`
	Data    map[string]interface{} `json:"data"`
	Error   map[string]interface{} `json:"error"`
}

func do(t *testing.T, method, url string, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := envelope{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPing(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodGet, srv.URL+"/ping", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "fcmpush", out.Data["service"])
}

func TestSendMessage(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodPost, srv.URL+"/api/v1/messages",
		`{"message": {"token": "tok", "data": {"count": 3}}, "dry_run": true}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, out.TraceID)
	assert.Equal(t, true, out.Data["success"])
	assert.Equal(t, "1", out.Data["message_id"])

	status, out = do(t, http.MethodPost, srv.URL+"/api/v1/messages",
		`{"message": {"title": "T", "body": "B", "topic": "news"}, "simple": true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out.Data["success"])
}

func TestSendMessage_Invalid(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodPost, srv.URL+"/api/v1/messages", `{"message": {"body": "B"}, "simple": true}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "02", out.Error["error_code"])
	assert.Contains(t, out.Error["debug"], "title")

	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/messages", `{"dry_run": true}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/messages", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSendAllAndMulticast(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodPost, srv.URL+"/api/v1/messages/batch",
		`{"messages": [{"token": "a"}, {"topic": "b"}]}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, out.Data["success_count"])

	status, out = do(t, http.MethodPost, srv.URL+"/api/v1/messages/multicast",
		`{"message": {"tokens": ["a", "b", "c"]}}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, out.Data["success_count"])
	assert.EqualValues(t, 0, out.Data["failure_count"])
}

func TestTokensLifecycle(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodPost, srv.URL+"/api/v1/tokens", `{"token": "tok-1", "user_id": "u-1"}`)
	require.Equal(t, http.StatusCreated, status)
	token := out.Data["device_token"].(map[string]interface{})
	assert.Equal(t, "tok-1", token["token"])

	status, out = do(t, http.MethodPost, srv.URL+"/api/v1/topics/news/subscribe", `{"token": "tok-1"}`)
	require.Equal(t, http.StatusOK, status)
	token = out.Data["device_token"].(map[string]interface{})
	assert.Equal(t, []interface{}{"news"}, token["topics"])

	status, out = do(t, http.MethodGet, srv.URL+"/api/v1/tokens?user_id=u-1&topic=news&limit=10", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out.Data["device_tokens"], 1)

	status, out = do(t, http.MethodPost, srv.URL+"/api/v1/users/u-1/messages",
		`{"message": {"webpush": {"notification": {"title": "hi"}}}, "dry_run": true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"tok-1"}, out.Data["tokens"])

	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/topics/news/unsubscribe", `{"token": "tok-1"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, http.MethodDelete, srv.URL+"/api/v1/tokens/tok-1", "")
	require.Equal(t, http.StatusOK, status)

	status, out = do(t, http.MethodDelete, srv.URL+"/api/v1/tokens/tok-1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "04", out.Error["error_code"])

	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/users/u-1/messages", `{"message": {}}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListTokens_BadQuery(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, http.MethodGet, srv.URL+"/api/v1/tokens?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodGet, srv.URL+"/api/v1/tokens?limit=5000", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestClientConfig(t *testing.T) {
	srv := newServer(t)

	status, out := do(t, http.MethodGet, srv.URL+"/api/v1/client-config", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vapid", out.Data["vapid_key"])
	assert.Equal(t, []interface{}{"news"}, out.Data["topics"])
	assert.Equal(t, []interface{}{}, out.Data["action_maps"])
}
