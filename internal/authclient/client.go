package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/Diwwy20/pp-food-client/internal/api"
)

// RefreshPath is the only route that may mint a new access token. A 401
// from this path is terminal and never triggers another refresh.
const RefreshPath = "/auth/refresh-token"

// Client performs backend calls with bearer-token injection and a
// single-flight refresh on authorization failure. Callers never deal with
// token lifecycle; a request either succeeds, fails with its original
// error, or fails with api.ErrSessionExpired after a failed refresh.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenStore

	refreshGroup singleflight.Group // at most one refresh in flight
	breaker      *gobreaker.CircuitBreaker[*http.Response]

	onSessionExpired func()
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport, mainly for tests.
// The cookie jar is preserved if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionExpiredHook registers a callback fired once when a refresh
// fails terminally and the session is cleared.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func New(baseURL string, tokens TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url failed: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar failed: %w", err)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		tokens: tokens,
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "backend",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}

	return c, nil
}

// Tokens exposes the session token store shared with the service layer.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

type requestOptions struct {
	query       url.Values
	headers     http.Header
	rawBody     []byte
	contentType string
}

type RequestOption func(*requestOptions)

func WithQuery(query url.Values) RequestOption {
	return func(o *requestOptions) { o.query = query }
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithRawBody sends a pre-encoded body (multipart forms) instead of JSON.
func WithRawBody(body []byte, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.rawBody = body
		o.contentType = contentType
	}
}

// Do performs an authenticated request against a backend-relative path and
// returns the decoded response envelope.
//
// On a 401 from any path other than RefreshPath the client refreshes the
// access token (one refresh shared by all concurrent callers) and replays
// the request once with the new token. A second 401 after a successful
// replay is returned to the caller as a plain api.Error. Network errors and
// non-401 statuses pass through unmodified.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts ...RequestOption) (*api.Envelope, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	payload := ro.rawBody
	contentType := ro.contentType
	if payload == nil && body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body failed: %w", err)
		}
		payload = encoded
		contentType = "application/json"
	}

	retried := false
	for {
		resp, err := c.send(ctx, method, path, payload, contentType, ro)
		if err != nil {
			return nil, err
		}

		env, status, err := readEnvelope(resp)
		if err != nil {
			return nil, err
		}

		if status == http.StatusUnauthorized && path != RefreshPath && !retried {
			if _, err := c.refresh(ctx); err != nil {
				return nil, err
			}
			retried = true
			continue
		}

		if status >= 400 {
			return nil, &api.Error{StatusCode: status, Message: env.Message}
		}
		return env, nil
	}
}

// refresh exchanges the refresh cookie for a new access token. Concurrent
// callers share a single refresh call; they all observe the same outcome.
// On failure the session is cleared and the expiry hook fires once.
func (c *Client) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		// The outcome is shared by every waiter, so the refresh must not
		// die with the first caller's context.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()

		token, err := c.doRefresh(rctx)
		if err != nil {
			c.tokens.Clear()
			if c.onSessionExpired != nil {
				c.onSessionExpired()
			}
			return nil, fmt.Errorf("%w: %v", api.ErrSessionExpired, err)
		}
		c.tokens.SetAccessToken(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, RefreshPath, nil, "", requestOptions{})
	if err != nil {
		return "", err
	}

	env, status, err := readEnvelope(resp)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", &api.Error{StatusCode: status, Message: env.Message}
	}

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := env.Decode(&data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}
	return data.AccessToken, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string, ro requestOptions) (*http.Response, error) {
	u := c.baseURL.JoinPath(path)
	if ro.query != nil {
		u.RawQuery = ro.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range ro.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	// Absence of a token does not block the request; the server decides.
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	return resp, nil
}

func readEnvelope(resp *http.Response) (*api.Envelope, int, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body failed: %w", err)
	}

	env := &api.Envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			// Non-envelope body (proxy error page etc.); keep the status.
			env = &api.Envelope{Success: resp.StatusCode < 400, Message: http.StatusText(resp.StatusCode)}
		}
	} else {
		env.Success = resp.StatusCode < 400
	}
	return env, resp.StatusCode, nil
}
