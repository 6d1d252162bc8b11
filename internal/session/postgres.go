package session

import (
	"context"
	"time"

	"semaphore/dashboard/internal/db"
)

// PostgresBackend stores records in session_records. Keys are namespaced by
// prefix so several operators can share one database.
type PostgresBackend struct {
	store  *db.Store
	prefix string
	now    func() time.Time
}

func NewPostgresBackend(store *db.Store, prefix string) *PostgresBackend {
	return &PostgresBackend{store: store, prefix: prefix, now: time.Now}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	return p.store.GetRecord(ctx, p.key(key), p.now())
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.store.SetRecord(ctx, p.key(key), value, p.now().Add(ttl))
}

func (p *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = p.key(key)
	}
	return p.store.DeleteRecords(ctx, prefixed)
}

func (p *PostgresBackend) key(key string) string {
	return p.prefix + key
}
