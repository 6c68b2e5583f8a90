package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

// DefaultBaseURL is the production Todoist REST API endpoint.
const DefaultBaseURL = "https://api.todoist.com/rest/v2"

// defaultRate keeps well under Todoist's documented 450 requests per
// 15 minutes, leaving headroom for bursts.
const (
	defaultRate  = 0.5
	defaultBurst = 5
)

// APIError reports a non-2xx response from the Todoist API.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the standard error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("todoist API error: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("todoist API error: status %d", e.StatusCode)
}

// Client talks to the Todoist REST API v2. All requests carry the bearer
// token and pass through a token-bucket rate limiter.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Todoist API client authenticated with the given token.
func NewClient(token string, logger logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 30 * time.Second

	c := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(defaultRate, defaultBurst),
		logger:      logger.WithField("component", "todoist_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one rate-limited request and returns the raw response body.
// A 204 response yields a nil body. Non-2xx statuses become APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter refused request")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Calling Todoist API.", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s %s failed", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Todoist API returned an error.", "status", resp.StatusCode, "path", path)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// get performs a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil || body == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, out), "failed to decode response from %s", path)
}

// post performs a POST with a JSON body. out may be nil for endpoints that
// return 204.
func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return err
	}
	if out == nil || body == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, out), "failed to decode response from %s", path)
}

// delete performs a DELETE; Todoist answers these with 204.
func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}
