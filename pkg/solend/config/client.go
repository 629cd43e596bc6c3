package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/solend-client/pkg/cache"
	"github.com/code-payments/solend-client/pkg/metrics"
	"github.com/code-payments/solend-client/pkg/retry"
	"github.com/code-payments/solend-client/pkg/retry/backoff"
)

const (
	metricsStructName = "solend.config.client"
)

const (
	DefaultEndpoint = "https://api.solend.fi"

	DeploymentProduction = "production"
	DeploymentDevnet     = "devnet"

	configPath = "/v1/config"

	maxCachedDeployments = 8
)

var (
	ErrDeploymentNotFound = errors.New("deployment not found")
)

// Client fetches deployment configuration.
type Client interface {
	// GetConfig returns the configuration for a deployment environment, such
	// as DeploymentProduction or DeploymentDevnet.
	GetConfig(ctx context.Context, deployment string) (*Config, error)
}

type client struct {
	endpoint   string
	httpClient *http.Client
	retrier    retry.Retrier
	cache      cache.Cache[*Config]
}

type Option func(*client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithRetryStrategies enables retries of failed requests. By default a
// request is attempted once.
func WithRetryStrategies(strategies ...retry.Strategy) Option {
	return func(c *client) {
		c.retrier = retry.NewRetrier(strategies...)
	}
}

// WithCache keeps fetched configs for ttl, so repeated lookups of the same
// deployment do not hit the network.
func WithCache(ttl time.Duration) Option {
	return func(c *client) {
		c.cache = cache.New[*Config](maxCachedDeployments, cache.WithTTL[*Config](ttl))
	}
}

// DefaultRetryStrategies retries throttled and unavailable responses a few
// times with backoff.
func DefaultRetryStrategies() []retry.Strategy {
	return []retry.Strategy{
		retry.RetriableStatusCodes(
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		),
		retry.Limit(3),
		retry.BackoffWithJitter(backoff.BinaryExponential(500*time.Millisecond), 5*time.Second, 0.1),
	}
}

func NewClient(opts ...Option) Client {
	c := &client{
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		retrier: retry.NewRetrier(retry.Limit(1)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetConfig implements Client.GetConfig
func (c *client) GetConfig(ctx context.Context, deployment string) (*Config, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetConfig")
	tracer.AddAttribute("deployment", deployment)
	defer tracer.End()

	if c.cache != nil {
		if cached, ok := c.cache.Retrieve(deployment); ok {
			tracer.AddAttribute("cached", true)
			return cached, nil
		}
	}

	var resp Config
	err := c.submitRequest(ctx, c.endpoint+configPath+"?"+url.Values{"deployment": {deployment}}.Encode(), &resp)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Insert(deployment, &resp, 1)
	}

	return &resp, nil
}

func (c *client) submitRequest(ctx context.Context, url string, resp interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	var httpResp *http.Response
	_, err = c.retrier.RetryWithContext(
		ctx,
		func() error {
			// Retry only occurs if err != nil, in which case the body does not need to be closed.
			// The body itself is closed below
			httpResp, err = c.httpClient.Do(req) //nolint:bodyclose
			if err != nil {
				return err
			}
			if httpResp.StatusCode >= http.StatusInternalServerError || httpResp.StatusCode == http.StatusTooManyRequests {
				httpResp.Body.Close()
				return retry.NewStatusCodeError(httpResp.StatusCode)
			}
			return nil
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to make request")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return ErrDeploymentNotFound
	} else if httpResp.StatusCode != http.StatusOK {
		return errors.Errorf("received non-200 status code: %d", httpResp.StatusCode)
	}

	err = json.NewDecoder(httpResp.Body).Decode(resp)
	if err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}
