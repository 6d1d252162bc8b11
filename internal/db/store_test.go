package db

import (
	"context"
	"os"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("DASHBOARD_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DASHBOARD_TEST_DATABASE_URL to run")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		t.Fatalf("db connection failed: %v", err)
	}
	t.Cleanup(pool.Close)
	store := NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM session_records WHERE key LIKE 'dbtest:%'`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	return store
}

func TestRecordLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.SetRecord(ctx, "dbtest:a", "one", now.Add(time.Hour)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetRecord(ctx, "dbtest:a", "two", now.Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	value, ok, err := store.GetRecord(ctx, "dbtest:a", now)
	if err != nil || !ok || value != "two" {
		t.Fatalf("unexpected record %q ok=%v err=%v", value, ok, err)
	}
	if _, ok, _ := store.GetRecord(ctx, "dbtest:a", now.Add(2*time.Hour)); ok {
		t.Fatalf("expired record must be absent")
	}

	if err := store.DeleteRecords(ctx, []string{"dbtest:a", "dbtest:missing"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.GetRecord(ctx, "dbtest:a", now); ok {
		t.Fatalf("deleted record must be absent")
	}
}

func TestPurgeExpired(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.SetRecord(ctx, "dbtest:old", "x", now.Add(-time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetRecord(ctx, "dbtest:live", "y", now.Add(time.Hour)); err != nil {
		t.Fatalf("set: %v", err)
	}
	purged, err := store.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged < 1 {
		t.Fatalf("expected the expired record to be purged, got %d", purged)
	}
	if _, ok, _ := store.GetRecord(ctx, "dbtest:live", now); !ok {
		t.Fatalf("live record must survive the purge")
	}
}
