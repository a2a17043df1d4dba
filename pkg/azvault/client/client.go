package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultManagementBase = "https://" + managementHost

	connectTimeout = 10 * time.Second
	requestTimeout = 30 * time.Second

	// maxRetries bounds additional attempts after the first for transient
	// failures (transport errors, 429, 5xx).
	maxRetries = 3

	// maxBackoffUnits caps the exponential schedule (1, 2, 4, 8 units).
	maxBackoffUnits = 8
)

// Client issues JSON requests against allowlisted Azure endpoints. It holds
// no per-request state and is safe for concurrent use.
type Client struct {
	rest           *resty.Client
	log            *zap.Logger
	allowURL       func(string) bool
	managementBase string
	retryUnit      time.Duration
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		log:            zap.NewNop(),
		allowURL:       IsAllowedURL,
		managementBase: defaultManagementBase,
		retryUnit:      time.Second,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: connectTimeout}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}
	c.rest = resty.New().
		SetTransport(transport).
		SetTimeout(requestTimeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(c.retryUnit).
		SetRetryMaxWaitTime(maxBackoffUnits * c.retryUnit).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			wait := c.retryWait(resp)
			c.log.Debug("retrying request",
				zap.Int("attempt", resp.Request.Attempt),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("wait", wait))
			return wait, nil
		})
	return c, nil
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) error {
		if log == nil {
			return errors.New("logger is nil")
		}
		c.log = log
		return nil
	}
}

// WithManagementEndpoint overrides the management-plane base URL, e.g. for
// sovereign clouds.
func WithManagementEndpoint(base string) Option {
	return func(c *Client) error {
		if base == "" {
			return errors.New("management endpoint is required")
		}
		c.managementBase = base
		return nil
	}
}

// WithRetryUnit changes the time unit of the backoff schedule. The default
// is one second.
func WithRetryUnit(unit time.Duration) Option {
	return func(c *Client) error {
		if unit <= 0 {
			return errors.New("retry unit must be positive")
		}
		c.retryUnit = unit
		return nil
	}
}

// retryWait picks the next wait: the server's Retry-After header when
// present, otherwise exponential backoff (1, 2, 4 units, capped at 8).
func (c *Client) retryWait(resp *resty.Response) time.Duration {
	if resp != nil {
		if header := resp.Header().Get("Retry-After"); header != "" {
			if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
				return time.Duration(secs) * c.retryUnit
			}
		}
	}
	attempt := 1
	if resp != nil && resp.Request != nil {
		attempt = resp.Request.Attempt
	}
	units := int64(1) << (attempt - 1)
	if units > maxBackoffUnits {
		units = maxBackoffUnits
	}
	return time.Duration(units) * c.retryUnit
}

// RequestJSON performs a bearer-authenticated JSON request. The URL is
// checked against the outbound allowlist before any network I/O. Transient
// failures are retried with backoff; any other non-success status yields an
// *APIError.
func (c *Client) RequestJSON(ctx context.Context, method, rawURL, token string, body any) (json.RawMessage, error) {
	if !c.allowURL(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedURL, rawURL)
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}

	payload := resp.Body()
	if len(payload) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("malformed response from %s %s", method, rawURL)
	}
	return payload, nil
}

// listPage is the wire shape of every Azure list endpoint: an item array
// plus an optional continuation URL.
type listPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"nextLink"`
}

// ListAll follows nextLink pagination from the initial URL and returns the
// flattened items in server order. Pages are fetched strictly sequentially
// since each continuation URL comes from the previous response.
func (c *Client) ListAll(ctx context.Context, rawURL, token string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	next := rawURL
	for next != "" {
		body, err := c.RequestJSON(ctx, http.MethodGet, next, token, nil)
		if err != nil {
			return nil, err
		}
		var page listPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("malformed list response: %w", err)
		}
		items = append(items, page.Value...)
		next = page.NextLink
	}
	return items, nil
}
