// Package apiclient is the shared transport for every call to the attendance
// REST backend. It attaches bearer tokens to non-public requests and recovers
// from expired access tokens with a single-flight refresh.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"semaphore/dashboard/internal/session"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultRefreshPath = "/token/refresh"

	LoginPath    = "/authentication/login"
	RegisterPath = "/authentication"

	requestIDHeader = "X-Request-ID"
)

// TokenStore is the session state the client reads before each request and
// writes after a refresh.
type TokenStore interface {
	Read(ctx context.Context) (session.Tokens, bool)
	UpdateAccessToken(ctx context.Context, token string) error
	SaveTokens(ctx context.Context, tokens session.Tokens) error
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL               string
	tokens                TokenStore
	httpClient            *http.Client
	timeout               time.Duration
	public                map[string]struct{}
	refreshPath           string
	clearOnRefreshFailure bool
	logger                *slog.Logger
	metrics               *Metrics

	group   singleflight.Group
	replays replayQueue
	mu      sync.Mutex
	state   State
	failed  string
	lastErr error
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		timeout:     DefaultTimeout,
		refreshPath: DefaultRefreshPath,
		logger:      slog.Default(),
	}
	WithPublicEndpoints(LoginPath, RegisterPath)(c)
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: params})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, request{method: http.MethodPost, path: path, body: payload})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, request{method: http.MethodPut, path: path, body: payload})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, request{method: http.MethodDelete, path: path})
}

// IsPublic reports whether path is reachable without an access token.
func (c *Client) IsPublic(path string) bool {
	_, ok := c.public[normalizePath(path)]
	return ok
}

func (c *Client) do(ctx context.Context, req request) (*Response, error) {
	token := c.authorize(ctx, req.path)
	resp, err := c.send(ctx, req, token)
	if err == nil || !c.refreshable(req.path, err) {
		return resp, err
	}

	turn := c.replays.join()
	defer c.replays.leave(turn)

	fresh, refreshErr := c.awaitRefresh(ctx, token)
	if refreshErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &TransportError{Method: req.method, Path: req.path, Err: ctxErr}
		}
		return nil, &RefreshError{Cause: refreshErr, Original: err}
	}
	if err := turn.wait(ctx); err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}
	c.metrics.replays.Inc()
	c.logger.Debug("replaying request with refreshed token", "method", req.method, "path", req.path)
	// Replayed once; a second 401 goes straight back to the caller.
	return c.send(c.replays.releaseOnWrite(ctx, turn), req, fresh)
}

func (c *Client) authorize(ctx context.Context, path string) string {
	if c.IsPublic(path) {
		return ""
	}
	tokens, ok := c.tokens.Read(ctx)
	if !ok {
		return ""
	}
	return tokens.AccessToken
}

func (c *Client) refreshable(path string, err error) bool {
	if !isUnauthorized(err) {
		return false
	}
	if c.IsPublic(path) {
		return false
	}
	return normalizePath(path) != c.refreshPath
}

func (c *Client) send(ctx context.Context, req request, token string) (*Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.resolve(req.path, req.query), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.method, 0, time.Since(start))
		c.logger.Warn("api request failed", "method", req.method, "path", req.path, "error", err)
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	c.metrics.observeRequest(req.method, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: fmt.Errorf("read body: %w", err)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Debug("api request rejected", "method", req.method, "path", req.path, "status", httpResp.StatusCode)
		return nil, &HTTPError{Method: req.method, Path: req.path, StatusCode: httpResp.StatusCode, Body: data}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return []byte("{}"), nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}
