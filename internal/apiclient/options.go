package apiclient

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client. The request
// timeout of hc is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithPublicEndpoints replaces the paths that never carry a bearer token.
func WithPublicEndpoints(paths ...string) Option {
	return func(c *Client) {
		c.public = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			c.public[normalizePath(p)] = struct{}{}
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = normalizePath(path)
		}
	}
}

// WithClearSessionOnRefreshFailure makes a failed refresh wipe the token
// store. By default the store is left for the caller to clear.
func WithClearSessionOnRefreshFailure(clear bool) Option {
	return func(c *Client) {
		c.clearOnRefreshFailure = clear
	}
}
