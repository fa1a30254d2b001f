package shopapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultTimeout covers image upload plus model inference on the backend.
const DefaultTimeout = 60 * time.Second

// Response is the raw outcome of one HTTP exchange
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport executes a built request exactly once. Implementations must honour
// ctx cancellation and return an error only when no HTTP response was obtained.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a transport with the given overall request timeout.
func NewRestyTransport(timeout time.Duration, userAgent string, log *zap.SugaredLogger) *RestyTransport {
	return NewRestyTransportWithClient(&http.Client{}, timeout, userAgent, log)
}

// NewRestyTransportWithClient wraps a copy of an existing http.Client, e.g. one
// from httptest. The caller's client is left untouched.
func NewRestyTransportWithClient(hc *http.Client, timeout time.Duration, userAgent string, log *zap.SugaredLogger) *RestyTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var own http.Client
	if hc != nil {
		own = *hc
	}
	c := resty.NewWithClient(&own)
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	if log != nil {
		c.SetLogger(log)
	}
	return &RestyTransport{client: c}
}

// Do performs the request and returns status and body for any HTTP response, 2xx or not.
func (t *RestyTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	r := t.client.R().SetContext(ctx)
	for key, values := range req.Header {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
