package fcm_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
)

// rewriteTransport sends every request to the test server regardless of the original host.
type rewriteTransport struct {
	target *url.URL
}

func (r rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	req.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type fakeFCM struct {
	sends int64
}

func (f *fakeFCM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/token":
		_, _ = io.WriteString(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)

	case strings.HasSuffix(r.URL.Path, "/messages:send"):
		atomic.AddInt64(&f.sends, 1)
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"status":"UNAUTHENTICATED","message":"no token"}}`)
			return
		}

		var body struct {
			ValidateOnly bool `json:"validate_only"`
			Message      struct {
				Token string `json:"token"`
			} `json:"message"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.Message.Token == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"status":"INVALID_ARGUMENT","message":"invalid registration token"}}`)
			return
		}

		name := "projects/test-project/messages/sent"
		if body.ValidateOnly {
			name = "projects/test-project/messages/dry"
		}

		_, _ = io.WriteString(w, `{"name":"`+name+`"}`)

	case strings.HasSuffix(r.URL.Path, ":batchAdd"), strings.HasSuffix(r.URL.Path, ":batchRemove"):
		_, _ = io.WriteString(w, `{"results":[{},{"error":"INVALID_ARGUMENT"}]}`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T) (*fcm.ClientDefault, *fakeFCM) {
	t.Helper()

	fake := &fakeFCM{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	require.NoError(t, err)

	key := sampleKey()
	key.PrivateKey = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	key.TokenURI = srv.URL + "/token"

	client, err := fcm.NewClient(context.Background(), fcm.ClientConfig{
		Key:          key,
		RoundTripper: &fcm.RoundTripper{Base: rewriteTransport{target: target}},
	})
	require.NoError(t, err)

	return client, fake
}

func TestNewClient_Validation(t *testing.T) {
	_, err := fcm.NewClient(context.Background(), fcm.ClientConfig{})
	assert.Error(t, err)
}

func TestClientDefault_Send(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	name, err := client.Send(ctx, &messaging.Message{Token: "good"}, false)
	require.NoError(t, err)
	assert.Equal(t, "projects/test-project/messages/sent", name)

	name, err = client.Send(ctx, &messaging.Message{Token: "good"}, true)
	require.NoError(t, err)
	assert.Equal(t, "projects/test-project/messages/dry", name)

	_, err = client.Send(ctx, &messaging.Message{Token: "bad"}, false)
	assert.Error(t, err)

	assert.Equal(t, int64(3), atomic.LoadInt64(&fake.sends))
}

func TestClientDefault_SendEach(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.SendEach(context.Background(), []*messaging.Message{
		{Token: "good"},
		{Token: "bad"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailureCount)

	multicast, err := client.SendEachForMulticast(context.Background(), &messaging.MulticastMessage{
		Tokens: []string{"good", "good"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, multicast.SuccessCount)
}

func TestClientDefault_Topics(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.SubscribeToTopic(context.Background(), []string{"a", "b"}, "news")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailureCount)

	resp, err = client.UnsubscribeFromTopic(context.Background(), []string{"a", "b"}, "news")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SuccessCount)
}

func TestNoop(t *testing.T) {
	noop := fcm.NewNoop()

	name, err := noop.Send(context.Background(), &messaging.Message{Token: "x"}, false)
	require.NoError(t, err)
	assert.True(t, fcm.ResponseFromFCM(name).Success)

	resp, err := noop.SendEachForMulticast(context.Background(), &messaging.MulticastMessage{Tokens: []string{"a", "b"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Len(t, resp.Responses, 2)
}
