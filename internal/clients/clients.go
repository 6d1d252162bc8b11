package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"semaphore/dashboard/internal/apiclient"
	"semaphore/dashboard/internal/config"
	"semaphore/dashboard/internal/db"
	"semaphore/dashboard/internal/report"
	"semaphore/dashboard/internal/services"
	"semaphore/dashboard/internal/session"
)

const pingTimeout = 5 * time.Second

type Clients struct {
	Store    *session.Store
	API      *apiclient.Client
	Services *services.Services
	Reports  *report.Loader
	Metrics  *apiclient.Metrics

	// SessionDB is set for the postgres session backend.
	SessionDB *db.Store

	redisClient *redis.Client
	pool        *pgxpool.Pool
}

// New builds the session store for cfg.SessionBackend and the API client
// and services on top of it. Metrics are registered on reg when non-nil.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Clients, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Clients{}
	backend, err := c.backend(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Store = session.NewStore(backend,
		session.WithTTLs(session.TTLs{
			Access:  cfg.SessionAccessTTL,
			Refresh: cfg.SessionRefreshTTL,
			User:    cfg.SessionUserTTL,
		}),
		session.WithLogger(logger),
	)
	c.Metrics = apiclient.NewMetrics(reg)
	c.API = apiclient.NewClient(cfg.APIBaseURL, c.Store,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger),
		apiclient.WithMetrics(c.Metrics),
		apiclient.WithPublicEndpoints(services.PublicEndpoints...),
		apiclient.WithRefreshPath(cfg.APIRefreshPath),
		apiclient.WithClearSessionOnRefreshFailure(cfg.ClearSessionOnRefreshFailure),
	)
	c.Services = services.New(c.API, c.Store, logger)
	c.Reports = report.NewLoader(c.Services, logger)
	return c, nil
}

func (c *Clients) backend(ctx context.Context, cfg config.Config) (session.Backend, error) {
	switch cfg.SessionBackend {
	case "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		client, err := session.ConnectRedis(cfg.SessionRedisURL)
		if err != nil {
			return nil, err
		}
		c.redisClient = client
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return session.NewRedisBackend(client, cfg.SessionRedisPrefix), nil
	case "postgres":
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		pool, err := db.NewPool(pingCtx, cfg.SessionDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connection failed: %w", err)
		}
		c.pool = pool
		c.SessionDB = db.NewStore(pool)
		if err := c.SessionDB.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("session schema: %w", err)
		}
		return session.NewPostgresBackend(c.SessionDB, cfg.SessionDatabasePrefix), nil
	default:
		return session.NewFileBackend(cfg.SessionFile), nil
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redisClient != nil {
		_ = c.redisClient.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
}
