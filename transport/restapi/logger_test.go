package restapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
)

func TestHeaderForLog(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Content-Type", "application/json")
	h.Add("Accept", "a")
	h.Add("Accept", "b")

	out := headerForLog(h)
	assert.Equal(t, "[redacted]", out["Authorization"])
	assert.Equal(t, "application/json", out["Content-Type"])
	assert.Equal(t, "a b", out["Accept"])
}

func TestBodyForLog(t *testing.T) {
	obj, raw, err := bodyForLog(nil)
	assert.NoError(t, err)
	assert.Nil(t, obj)
	assert.Empty(t, raw)

	obj, raw, err = bodyForLog([]byte(`{"token":"t"}`))
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"token": "t"}, obj)
	assert.Empty(t, raw)

	long := strings.Repeat("x", maxLoggedBody+10)
	obj, raw, err = bodyForLog([]byte(long))
	assert.Error(t, err)
	assert.Nil(t, obj)
	assert.True(t, strings.HasSuffix(raw, "...(truncated)"))
	assert.Len(t, raw, maxLoggedBody+len("...(truncated)"))
}

func TestRequestLogger(t *testing.T) {
	var gotBody string
	var gotTracer respbuilder.Tracer
	handler := requestLogger(func(r *http.Request) bool { return false }, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		gotTracer = respbuilder.MustExtract(r.Context())

		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens", strings.NewReader(`{"token":"t"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, `{"token":"t"}`, gotBody)
	assert.NotEmpty(t, gotTracer.AppTraceID)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
}

func TestRequestLogger_Skip(t *testing.T) {
	called := false
	handler := requestLogger(func(r *http.Request) bool { return true }, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := respbuilder.Extract(r.Context())
		assert.False(t, ok)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.True(t, called)
}

func TestInjectTracer(t *testing.T) {
	ctx, err := injectTracer(context.Background(), "127.0.0.1:1")
	require.NoError(t, err)

	tr, ok := respbuilder.Extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:1", tr.RemoteAddr)
	assert.NotEmpty(t, tr.AppTraceID)
}
