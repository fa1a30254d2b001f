package shopapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/snapshop/shopkit/internal/domain"
	"go.uber.org/zap"
)

// maxLoggedBody caps the response snippet written to debug logs.
const maxLoggedBody = 512

// Config holds the immutable settings of a Client
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	DefaultNumResults int
	MaxNumResults     int
	Country           string
	Language          string
}

// Client talks to the shopping backend. Every call is a single attempt; retries,
// including honouring rate-limit hints, are left to the caller.
type Client struct {
	builder   *RequestBuilder
	transport Transport
	log       *zap.SugaredLogger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithTransport replaces the default resty transport, e.g. with a test double.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger routes diagnostics to log.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new shopping backend client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder, err := NewRequestBuilder(cfg.BaseURL, BuilderConfig{
		DefaultNumResults: cfg.DefaultNumResults,
		MaxNumResults:     cfg.MaxNumResults,
		Country:           cfg.Country,
		Language:          cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{builder: builder}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(cfg.Timeout, cfg.UserAgent, c.log)
	}
	return c, nil
}

// Identify uploads an image and returns the backend's product candidates.
func (c *Client) Identify(ctx context.Context, image []byte, filename, mimeType string) (*domain.IdentifyResult, error) {
	req, err := c.builder.Identify(image, filename, mimeType)
	if err != nil {
		return nil, err
	}
	body, err := c.execute(ctx, endpointIdentify, req)
	if err != nil {
		return nil, err
	}
	return DecodeIdentify(body)
}

// FetchOffers looks up merchant offers for a canonical query.
func (c *Client) FetchOffers(ctx context.Context, query string, opts domain.OffersOptions) (*domain.OffersResult, error) {
	req, err := c.builder.Offers(query, opts)
	if err != nil {
		return nil, err
	}
	body, err := c.execute(ctx, endpointOffers, req)
	if err != nil {
		return nil, err
	}
	return DecodeOffers(body)
}

// Health calls the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	body, err := c.execute(ctx, endpointHealth, c.builder.Meta(endpointHealth))
	if err != nil {
		return nil, err
	}
	return DecodeHealth(body)
}

// Version reports the deployed backend version.
func (c *Client) Version(ctx context.Context) (*domain.VersionInfo, error) {
	body, err := c.execute(ctx, endpointVersion, c.builder.Meta(endpointVersion))
	if err != nil {
		return nil, err
	}
	return DecodeVersion(body)
}

// execute runs one exchange and returns the body of a 2xx response.
// A call whose context ended never reaches the decode path.
func (c *Client) execute(ctx context.Context, endpoint string, req *Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	c.log.Debugw("shop api request",
		"endpoint", endpoint,
		"method", req.Method,
		"url", req.URL,
		"body_bytes", len(req.Body))

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.log.Debugw("shop api call canceled", "endpoint", endpoint, "error", ctxErr)
		return nil, fmt.Errorf("%s: %w", endpoint, ctxErr)
	}
	if err != nil {
		c.log.Warnw("shop api transport failure", "endpoint", endpoint, "url", req.URL, "error", err)
		return nil, &domain.TransportError{Method: req.Method, URL: req.URL, Cause: err}
	}

	c.log.Debugw("shop api response",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
		"body", bodySnippet(resp.Body))

	if err := Classify(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func bodySnippet(body []byte) string {
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}
	return strings.TrimSpace(string(body))
}
