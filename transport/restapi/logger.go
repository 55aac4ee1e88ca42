package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const (
	requestTimeout = 30 * time.Second

	// maxLoggedBody caps the raw (non JSON) body kept in the access log.
	maxLoggedBody = 4 << 10
)

// redactedHeaders never reach the access log.
var redactedHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

type accessLog struct {
	skip func(r *http.Request) bool
	next http.Handler
}

func requestLogger(skipFunc func(r *http.Request) bool, next http.Handler) http.HandlerFunc {
	l := &accessLog{skip: skipFunc, next: next}
	return l.ServeHTTP
}

func (l *accessLog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if l.skip != nil && l.skip(r) {
		l.next.ServeHTTP(w, r)
		return
	}

	start := time.Now().UTC()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ctx, err := injectTracer(ctx, r.RemoteAddr)
	r = r.WithContext(ctx)

	reqBody, _err := readRequestBody(r)
	err = multierr.Append(err, _err)

	reqObj, reqStr, _err := bodyForLog(reqBody)
	if _err != nil {
		err = multierr.Append(err, fmt.Errorf("request body: %w", _err))
	}

	rec := httptest.NewRecorder()
	l.next.ServeHTTP(rec, r)

	respBody := rec.Body.Bytes()
	respObj, respStr, _err := bodyForLog(respBody)
	if _err != nil {
		err = multierr.Append(err, fmt.Errorf("response body: %w", _err))
	}

	for k, v := range rec.Header() {
		w.Header()[k] = v
	}

	w.WriteHeader(rec.Code)
	if _, _err = w.Write(respBody); _err != nil {
		err = multierr.Append(err, fmt.Errorf("error write response body: %w", _err))
	}

	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	ylog.Access(ctx, ylog.AccessLogData{
		Path: r.RequestURI,
		Request: ylog.HTTPData{
			Header:     headerForLog(r.Header),
			DataObject: reqObj,
			DataString: reqStr,
		},
		Response: ylog.HTTPData{
			Header:     headerForLog(rec.Header()),
			DataObject: respObj,
			DataString: respStr,
		},
		Error:       errStr,
		ElapsedTime: time.Since(start).Milliseconds(),
	})
}

// injectTracer puts the log tracer and the response tracer in ctx, both keyed by the otel trace id when one exists.
func injectTracer(ctx context.Context, remoteAddr string) (context.Context, error) {
	traceID := uuid.NewV4().String()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}

	ctx = respbuilder.Inject(ctx, respbuilder.Tracer{
		RemoteAddr: remoteAddr,
		AppTraceID: traceID,
	})

	logTracer, err := ylog.NewTracer(tracer.LogData{
		RemoteAddr: remoteAddr,
		TraceID:    traceID,
	}, ylog.WithTag("tracer"))
	if err != nil {
		return ctx, fmt.Errorf("error prepare log tracer data: %w", err)
	}

	return ylog.Inject(ctx, logTracer), nil
}

// readRequestBody drains the body and puts an in-memory copy back for the handler.
func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	closeErr := r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	if err != nil {
		return body, fmt.Errorf("error read request body: %w", err)
	}

	if closeErr != nil {
		return body, fmt.Errorf("cannot close request body: %w", closeErr)
	}

	return body, nil
}

// bodyForLog returns the decoded JSON object, or the raw text when it is not JSON.
func bodyForLog(body []byte) (obj interface{}, raw string, err error) {
	if len(body) == 0 {
		return nil, "", nil
	}

	if err = json.Unmarshal(body, &obj); err == nil {
		return obj, "", nil
	}

	raw = string(body)
	if len(raw) > maxLoggedBody {
		raw = raw[:maxLoggedBody] + "...(truncated)"
	}

	return nil, raw, err
}

func headerForLog(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if _, redact := redactedHeaders[http.CanonicalHeaderKey(k)]; redact {
			out[k] = "[redacted]"
			continue
		}

		out[k] = strings.Join(v, " ")
	}

	return out
}
