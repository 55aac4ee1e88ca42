package fcm

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// RoundTripper writes an access log for every outgoing call to Google APIs.
// Authorization headers are redacted.
type RoundTripper struct {
	Base http.RoundTripper
}

var _ http.RoundTripper = (*RoundTripper)(nil)

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	t0 := time.Now()
	ctx := req.Context()

	base := r.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var err error
	reqBody, readErr := drainBody(&req.Body)
	if readErr != nil {
		err = multierr.Append(err, fmt.Errorf("error read request body: %w", readErr))
	}

	resp, rtErr := base.RoundTrip(req)
	if rtErr != nil {
		err = multierr.Append(err, fmt.Errorf("error doing actual request: %w", rtErr))
	}

	var (
		respHeader http.Header
		respBody   []byte
	)
	if resp != nil {
		respHeader = resp.Header
		respBody, readErr = drainBody(&resp.Body)
		if readErr != nil {
			err = multierr.Append(err, fmt.Errorf("error read response body: %w", readErr))
		}
	}

	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	ylog.Access(ctx, ylog.AccessLogData{
		Path: req.URL.String(),
		Request: ylog.HTTPData{
			Header:     headerMap(req.Header),
			DataString: string(reqBody),
		},
		Response: ylog.HTTPData{
			Header:     headerMap(respHeader),
			DataString: string(respBody),
		},
		Error:       errStr,
		ElapsedTime: time.Since(t0).Milliseconds(),
	})

	if rtErr != nil {
		return resp, err
	}

	return resp, nil
}

// drainBody reads the body and puts back a fresh reader so the caller can read it again.
func drainBody(body *io.ReadCloser) ([]byte, error) {
	if body == nil || *body == nil || *body == http.NoBody {
		return nil, nil
	}

	b, err := io.ReadAll(*body)
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(b))
	return b, err
}

func headerMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") {
			out[k] = "[redacted]"
			continue
		}

		out[k] = strings.Join(v, " ")
	}

	return out
}
