package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/ai29/internal/config"
	apierrors "github.com/diogo/ai29/internal/errors"
	"github.com/diogo/ai29/internal/models"
)

const (
	// DefaultTimeout bounds a single request attempt
	DefaultTimeout = 60 * time.Second

	// maxBodySize caps how much of a response body is read
	maxBodySize = 4 << 20

	// maxErrorBody caps the body kept on an APIError
	maxErrorBody = 4096
)

// Doer sends a single HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the three chat endpoints of one backend
type Client struct {
	baseURL    *url.URL
	httpClient Doer
	jar        http.CookieJar
	cookies    []config.SessionCookie
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     zerolog.Logger
	newID      func() string
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the default TLS client
func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithCookieJar replaces the default in-memory cookie jar
func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithSessionCookies seeds the jar with previously stored session cookies
func WithSessionCookies(cookies []config.SessionCookie) ClientOption {
	return func(c *Client) {
		c.cookies = cookies
	}
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetry allows up to maxRetries extra attempts for transport failures,
// timeouts and 5xx answers, waiting backoff*n before attempt n+1.
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at serverURL
func NewClient(serverURL string, opts ...ClientOption) (*Client, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, apierrors.ErrNoServerURL
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: expected http(s)://host[:port]", serverURL)
	}

	client := &Client{
		baseURL: u,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.jar == nil {
		client.jar = tls_client.NewCookieJar()
	}

	if client.httpClient == nil {
		// The client-level timeout is a backstop; each attempt carries its
		// own context deadline.
		seconds := int(math.Ceil(client.timeout.Seconds())) + 5
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(seconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	if len(client.cookies) > 0 {
		client.SetSessionCookies(client.cookies)
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close marks the client closed; further calls fail with ErrClientClosed
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// SessionCookies returns the cookies the backend set for its base URL
func (c *Client) SessionCookies() []config.SessionCookie {
	var out []config.SessionCookie
	for _, ck := range c.jar.Cookies(c.baseURL) {
		out = append(out, config.SessionCookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	return out
}

// SetSessionCookies loads cookies into the jar for the base URL
func (c *Client) SetSessionCookies(cookies []config.SessionCookie) {
	converted := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		path := ck.Path
		if path == "" {
			path = "/"
		}
		converted = append(converted, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: path})
	}
	c.jar.SetCookies(c.baseURL, converted)
}

// response is a successful (2xx) backend answer
type response struct {
	status int
	body   []byte
}

// do performs a request with the retry policy applied
func (c *Client) do(ctx context.Context, method, endpoint, operation string, body []byte) (*response, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	requestID := c.newID()
	log := c.logger.With().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Logger()

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt+1).Err(lastErr).Msg("retrying request")
			if err := sleepContext(ctx, c.backoff*time.Duration(attempt)); err != nil {
				lastErr = apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
				break
			}
		}

		attempts++
		resp, err := c.attempt(ctx, method, endpoint, operation, requestID, body)
		if err == nil {
			log.Debug().Int("status", resp.status).Int("attempts", attempts).Msg("request completed")
			return resp, nil
		}

		lastErr = err
		if ctx.Err() != nil || !apierrors.IsRetryable(err) {
			break
		}
	}

	log.Warn().
		Err(lastErr).
		Int("status", apierrors.GetHTTPStatus(lastErr)).
		Int("attempts", attempts).
		Msg(operation + " failed")
	return nil, lastErr
}

// attempt performs exactly one request
func (c *Client) attempt(ctx context.Context, method, endpoint, operation, requestID string, body []byte) (*response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL.String()+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(attemptCtx)

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	for _, ck := range c.jar.Cookies(req.URL) {
		req.AddCookie(ck)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, operation, endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.jar.SetCookies(req.URL, cookies)
	}

	var data []byte
	if resp.Body != nil {
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, c.transportError(ctx, attemptCtx, operation, endpoint, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, endpoint, data)
	}

	return &response{status: resp.StatusCode, body: data}, nil
}

// transportError classifies a failure that produced no usable response
func (c *Client) transportError(ctx, attemptCtx context.Context, operation, endpoint string, err error) error {
	if ctx.Err() == nil && attemptCtx.Err() == context.DeadlineExceeded {
		return &apierrors.TimeoutError{
			Message:  fmt.Sprintf("%s did not complete within %s", operation, c.timeout),
			Endpoint: endpoint,
		}
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	return apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
