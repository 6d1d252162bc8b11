package clients

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	"semaphore/dashboard/internal/config"
	"semaphore/dashboard/internal/session"
)

func testConfig(backend string) config.Config {
	return config.Config{
		APIBaseURL:         "http://127.0.0.1:5000/api",
		APITimeout:         time.Second,
		APIRefreshPath:     "/token/refresh",
		SessionBackend:     backend,
		SessionRedisPrefix: "dashboard:",
		SessionAccessTTL:   time.Hour,
	}
}

func roundTrip(t *testing.T, c *Clients) {
	t.Helper()
	ctx := context.Background()
	if err := c.Store.SaveTokens(ctx, session.Tokens{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("save tokens: %v", err)
	}
	tokens, ok := c.Store.Read(ctx)
	if !ok || tokens.AccessToken != "a1" || tokens.RefreshToken != "r1" {
		t.Fatalf("unexpected tokens %+v ok=%v", tokens, ok)
	}
}

func TestNewMemoryBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(context.Background(), testConfig("memory"), nil, reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if c.API == nil || c.Services == nil || c.Reports == nil || c.Metrics == nil {
		t.Fatalf("expected a complete bundle, got %+v", c)
	}
	if c.API.BaseURL() != "http://127.0.0.1:5000/api" {
		t.Fatalf("unexpected base url %q", c.API.BaseURL())
	}
	if !c.API.IsPublic("/authentication/login") || c.API.IsPublic("/students") {
		t.Fatalf("unexpected public endpoint table")
	}
	if c.SessionDB != nil {
		t.Fatalf("memory backend must not open a database")
	}
	roundTrip(t, c)
}

func TestNewFileBackend(t *testing.T) {
	cfg := testConfig("file")
	cfg.SessionFile = filepath.Join(t.TempDir(), "session.json")
	c, err := New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()
	roundTrip(t, c)
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig("redis")
	cfg.SessionRedisURL = "redis://" + mr.Addr()

	c, err := New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()
	roundTrip(t, c)

	if !mr.Exists("dashboard:accessToken") {
		t.Fatalf("expected prefixed access token key, keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("dashboard:accessToken"); ttl != time.Hour {
		t.Fatalf("expected configured access ttl, got %v", ttl)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig("redis")
	cfg.SessionRedisURL = "redis://" + addr
	if _, err := New(context.Background(), cfg, nil, nil); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestCloseNil(t *testing.T) {
	var c *Clients
	c.Close()
}
